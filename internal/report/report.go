// Package report formats trial results into per-trial comparison blocks.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"mintbench/internal/domain"
	"mintbench/internal/pricing"
	"mintbench/internal/schedule"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", raw)
	}
}

// Pair compares a candidate variant against a baseline variant.
type Pair struct {
	Candidate string
	Baseline  string
}

// ValidatePairs checks that every pair references declared variants.
func ValidatePairs(pairs []Pair, variants []string) error {
	known := make(map[string]bool, len(variants))
	for _, name := range variants {
		known[name] = true
	}
	for _, pair := range pairs {
		if !known[pair.Candidate] {
			return fmt.Errorf("relative pair candidate %q is not a declared variant", pair.Candidate)
		}
		if !known[pair.Baseline] {
			return fmt.Errorf("relative pair baseline %q is not a declared variant", pair.Baseline)
		}
	}
	return nil
}

type Options struct {
	ShowRelativeCost bool
	ShowUSDCost      bool
	Pairs            []Pair
	FiatSymbol       string
	Format           Format
}

type GasLine struct {
	Variant string `json:"variant"`
	GasUsed uint64 `json:"gas_used"`
}

type RelativeLine struct {
	Candidate string  `json:"candidate"`
	Baseline  string  `json:"baseline"`
	Percent   float64 `json:"percent_cheaper"`
}

type FiatLine struct {
	Variant  string `json:"variant"`
	Cost     string `json:"cost"`
	Currency string `json:"currency"`
}

// Block is the report for one trial index: absolute gas first, then relative
// comparisons, then fiat costs.
type Block struct {
	TrialIndex uint64         `json:"trial_index"`
	Units      uint64         `json:"units"`
	Gas        []GasLine      `json:"gas"`
	Relative   []RelativeLine `json:"relative,omitempty"`
	Fiat       []FiatLine     `json:"fiat,omitempty"`
}

type Generator struct {
	w     io.Writer
	model *pricing.Model
	opts  Options
}

func NewGenerator(w io.Writer, model *pricing.Model, opts Options) (*Generator, error) {
	if w == nil {
		return nil, errors.New("report writer is required")
	}
	if model == nil {
		return nil, errors.New("pricing model is required")
	}
	if opts.FiatSymbol == "" {
		opts.FiatSymbol = "USD"
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Generator{w: w, model: model, opts: opts}, nil
}

// Build derives the comparison block for a trial. Relative lines whose
// baseline used zero gas are left out.
func (g *Generator) Build(trial domain.TrialResult) Block {
	block := Block{
		TrialIndex: trial.TrialIndex,
		Units:      schedule.Units(trial.TrialIndex),
		Gas:        make([]GasLine, 0, len(trial.Receipts)),
	}
	for _, receipt := range trial.Receipts {
		block.Gas = append(block.Gas, GasLine{Variant: receipt.Variant, GasUsed: receipt.GasUsed})
	}

	if g.opts.ShowRelativeCost {
		for _, pair := range g.opts.Pairs {
			candidate, ok := trial.Receipt(pair.Candidate)
			if !ok {
				continue
			}
			baseline, ok := trial.Receipt(pair.Baseline)
			if !ok {
				continue
			}
			percent, err := pricing.RelativeReduction(baseline.GasUsed, candidate.GasUsed)
			if err != nil {
				continue
			}
			block.Relative = append(block.Relative, RelativeLine{
				Candidate: pair.Candidate,
				Baseline:  pair.Baseline,
				Percent:   percent,
			})
		}
	}

	if g.opts.ShowUSDCost {
		for _, receipt := range trial.Receipts {
			block.Fiat = append(block.Fiat, FiatLine{
				Variant:  receipt.Variant,
				Cost:     g.model.CostOf(receipt.GasUsed).FloatString(2),
				Currency: g.opts.FiatSymbol,
			})
		}
	}
	return block
}

// Emit writes the block for trial in the configured format.
func (g *Generator) Emit(ctx context.Context, trial domain.TrialResult) error {
	block := g.Build(trial)
	if g.opts.Format == FormatJSON {
		enc := json.NewEncoder(g.w)
		enc.SetEscapeHTML(false)
		return enc.Encode(block)
	}
	return writeText(g.w, block)
}

func writeText(w io.Writer, block Block) error {
	var b strings.Builder
	b.WriteString("===============================================\n")
	fmt.Fprintf(&b, "Trial %d: minting %d token(s) at once\n", block.TrialIndex, block.Units)
	for _, line := range block.Gas {
		fmt.Fprintf(&b, "Gas used for %s: %d\n", line.Variant, line.GasUsed)
	}
	for _, line := range block.Relative {
		fmt.Fprintf(&b, "%s is %.2f%% cheaper to mint than %s\n", line.Candidate, line.Percent, line.Baseline)
	}
	for _, line := range block.Fiat {
		fmt.Fprintf(&b, "%s cost in %s: %s\n", line.Variant, line.Currency, line.Cost)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Header writes the pricing assumptions once before the first trial. JSON
// output has no header.
func (g *Generator) Header() error {
	if g.opts.Format == FormatJSON {
		return nil
	}
	_, err := fmt.Fprintf(g.w, "ASSUMPTIONS:\nGas price: %s gwei\nEther price: %s %s\n",
		trimRat(g.model.GasPriceGwei().FloatString(9)),
		trimRat(g.model.FiatPerEther().FloatString(2)),
		g.opts.FiatSymbol,
	)
	return err
}

// Total is the gas a variant consumed across all trials.
type Total struct {
	Variant string `json:"variant"`
	GasUsed uint64 `json:"gas_used"`
}

// Summary writes a markdown table of total trial gas and cost per variant.
func (g *Generator) Summary(trials uint64, totals []Total) error {
	if g.opts.Format == FormatJSON {
		enc := json.NewEncoder(g.w)
		return enc.Encode(struct {
			Trials uint64  `json:"trials"`
			Totals []Total `json:"totals"`
		}{Trials: trials, Totals: totals})
	}

	var b strings.Builder
	b.WriteString("===============================================\n")
	fmt.Fprintf(&b, "Totals over %d trial(s)\n\n", trials)
	fmt.Fprintf(&b, "| Variant | Gas Used | Cost (%s) |\n", g.opts.FiatSymbol)
	b.WriteString("|---------|----------|-----------|\n")
	for _, total := range totals {
		fmt.Fprintf(&b, "| %s | %d | %s |\n",
			total.Variant,
			total.GasUsed,
			g.model.CostOf(total.GasUsed).FloatString(2),
		)
	}
	_, err := io.WriteString(g.w, b.String())
	return err
}

func trimRat(formatted string) string {
	if !strings.Contains(formatted, ".") {
		return formatted
	}
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}
