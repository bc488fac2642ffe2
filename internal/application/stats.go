package application

import (
	"log/slog"
	"time"

	"mintbench/internal/domain"
)

// Stats accumulates per-variant totals over a run.
type Stats struct {
	startTime      time.Time
	order          []string
	deployGas      map[string]uint64
	bootstrapGas   map[string]uint64
	trialGas       map[string]uint64
	trialsObserved uint64
}

func NewStats() *Stats {
	return &Stats{
		startTime:    time.Now(),
		deployGas:    make(map[string]uint64),
		bootstrapGas: make(map[string]uint64),
		trialGas:     make(map[string]uint64),
	}
}

func (s *Stats) OnDeployed(variant domain.ContractVariant, receipt domain.Receipt) {
	if _, ok := s.deployGas[variant.Name]; !ok {
		s.order = append(s.order, variant.Name)
	}
	s.deployGas[variant.Name] = receipt.GasUsed
}

func (s *Stats) OnBootstrap(receipt domain.OperationReceipt) {
	s.bootstrapGas[receipt.Variant] = receipt.GasUsed
}

func (s *Stats) OnTrial(trial domain.TrialResult) {
	s.trialsObserved++
	for _, receipt := range trial.Receipts {
		s.trialGas[receipt.Variant] += receipt.GasUsed
	}
}

type VariantTotals struct {
	Variant      string
	DeployGas    uint64
	BootstrapGas uint64
	TrialGas     uint64
}

type Snapshot struct {
	StartTime time.Time
	Elapsed   time.Duration
	Trials    uint64
	Variants  []VariantTotals
}

func (s *Stats) Snapshot() Snapshot {
	totals := make([]VariantTotals, 0, len(s.order))
	for _, name := range s.order {
		totals = append(totals, VariantTotals{
			Variant:      name,
			DeployGas:    s.deployGas[name],
			BootstrapGas: s.bootstrapGas[name],
			TrialGas:     s.trialGas[name],
		})
	}
	return Snapshot{
		StartTime: s.startTime,
		Elapsed:   time.Since(s.startTime),
		Trials:    s.trialsObserved,
		Variants:  totals,
	}
}

// Log writes the snapshot as one structured line per variant.
func (s Snapshot) Log() {
	slog.Info("benchmark summary", "trials", s.Trials, "elapsed", s.Elapsed)
	for _, v := range s.Variants {
		slog.Info("variant totals",
			"variant", v.Variant,
			"deploy_gas", v.DeployGas,
			"bootstrap_gas", v.BootstrapGas,
			"trial_gas", v.TrialGas,
		)
	}
}
