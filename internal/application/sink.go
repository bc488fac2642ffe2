package application

import (
	"context"

	"mintbench/internal/domain"
)

// FanOut emits each trial to every sink in order, stopping at the first error.
type FanOut []TrialSink

func (f FanOut) Emit(ctx context.Context, trial domain.TrialResult) error {
	for _, sink := range f {
		if err := sink.Emit(ctx, trial); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps every emitted trial in memory.
type Collector struct {
	Trials []domain.TrialResult
}

func (c *Collector) Emit(ctx context.Context, trial domain.TrialResult) error {
	c.Trials = append(c.Trials, trial)
	return nil
}
