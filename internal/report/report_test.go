package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"mintbench/internal/domain"
	"mintbench/internal/pricing"
)

func testModel(t *testing.T) *pricing.Model {
	t.Helper()
	model, err := pricing.NewModel(pricing.AssumptionsFromEther(big.NewRat(100, 1), big.NewRat(3500, 1)))
	if err != nil {
		t.Fatalf("pricing model: %v", err)
	}
	return model
}

func trial(index uint64, gas map[string]uint64, order ...string) domain.TrialResult {
	result := domain.TrialResult{TrialIndex: index}
	for _, name := range order {
		result.Receipts = append(result.Receipts, domain.OperationReceipt{
			Variant:    name,
			TrialIndex: index,
			GasUsed:    gas[name],
		})
	}
	return result
}

func TestEmitOrdering(t *testing.T) {
	var buf bytes.Buffer
	gen, err := NewGenerator(&buf, testModel(t), Options{
		ShowRelativeCost: true,
		ShowUSDCost:      true,
		Pairs:            []Pair{{Candidate: "C", Baseline: "A"}, {Candidate: "B", Baseline: "A"}},
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	err = gen.Emit(context.Background(), trial(1, map[string]uint64{"A": 50000, "B": 40000, "C": 30000}, "A", "B", "C"))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	want := []string{
		"===============================================",
		"Trial 1: minting 1 token(s) at once",
		"Gas used for A: 50000",
		"Gas used for B: 40000",
		"Gas used for C: 30000",
		"C is 40.00% cheaper to mint than A",
		"B is 20.00% cheaper to mint than A",
		"A cost in USD: 17.50",
		"B cost in USD: 14.00",
		"C cost in USD: 10.50",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEmitOptionsOff(t *testing.T) {
	var buf bytes.Buffer
	gen, _ := NewGenerator(&buf, testModel(t), Options{
		Pairs: []Pair{{Candidate: "B", Baseline: "A"}},
	})
	if err := gen.Emit(context.Background(), trial(2, map[string]uint64{"A": 80000, "B": 60000}, "A", "B")); err != nil {
		t.Fatalf("emit: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "cheaper") {
		t.Errorf("relative line emitted with ShowRelativeCost off:\n%s", out)
	}
	if strings.Contains(out, "cost in") {
		t.Errorf("fiat line emitted with ShowUSDCost off:\n%s", out)
	}
	if !strings.Contains(out, "Trial 2: minting 2 token(s) at once") {
		t.Errorf("missing trial header:\n%s", out)
	}
}

func TestBuildSkipsZeroBaseline(t *testing.T) {
	gen, _ := NewGenerator(&bytes.Buffer{}, testModel(t), Options{
		ShowRelativeCost: true,
		Pairs: []Pair{
			{Candidate: "B", Baseline: "A"},
			{Candidate: "A", Baseline: "B"},
		},
	})
	block := gen.Build(trial(1, map[string]uint64{"A": 0, "B": 100}, "A", "B"))
	if len(block.Relative) != 1 {
		t.Fatalf("relative lines = %d, want 1", len(block.Relative))
	}
	if block.Relative[0].Baseline != "B" || block.Relative[0].Percent != 100 {
		t.Errorf("relative = %+v", block.Relative[0])
	}
}

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	gen, _ := NewGenerator(&buf, testModel(t), Options{ShowUSDCost: true, Format: FormatJSON})
	if err := gen.Header(); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i := uint64(1); i <= 2; i++ {
		if err := gen.Emit(context.Background(), trial(i, map[string]uint64{"A": 1000 * i}, "A")); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	dec := json.NewDecoder(&buf)
	for i := uint64(1); i <= 2; i++ {
		var block Block
		if err := dec.Decode(&block); err != nil {
			t.Fatalf("decode block %d: %v", i, err)
		}
		if block.TrialIndex != i {
			t.Errorf("trial index = %d, want %d", block.TrialIndex, i)
		}
		if len(block.Fiat) != 1 || block.Fiat[0].Currency != "USD" {
			t.Errorf("fiat = %+v", block.Fiat)
		}
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	gen, _ := NewGenerator(&buf, testModel(t), Options{FiatSymbol: "EUR"})
	if err := gen.Header(); err != nil {
		t.Fatalf("header: %v", err)
	}
	want := "ASSUMPTIONS:\nGas price: 100 gwei\nEther price: 3500 EUR\n"
	if buf.String() != want {
		t.Errorf("header = %q, want %q", buf.String(), want)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	gen, _ := NewGenerator(&buf, testModel(t), Options{})
	if err := gen.Summary(2, []Total{{Variant: "A", GasUsed: 130000}}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(buf.String(), "| A | 130000 | 45.50 |") {
		t.Errorf("summary missing row:\n%s", buf.String())
	}
}

func TestValidatePairs(t *testing.T) {
	variants := []string{"A", "B"}
	if err := ValidatePairs([]Pair{{Candidate: "B", Baseline: "A"}}, variants); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePairs([]Pair{{Candidate: "C", Baseline: "A"}}, variants); err == nil {
		t.Error("expected error for unknown candidate")
	}
	if err := ValidatePairs([]Pair{{Candidate: "A", Baseline: "Z"}}, variants); err == nil {
		t.Error("expected error for unknown baseline")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
