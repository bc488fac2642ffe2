package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mintbench/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type State string

const (
	StateInit          State = "init"
	StateDeploying     State = "deploying"
	StateBootstrapping State = "bootstrapping"
	StateRunning       State = "running"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

type VariantDeployer interface {
	Deploy(ctx context.Context, spec domain.VariantSpec) (domain.ContractVariant, domain.Receipt, error)
}

// TrialSink receives each completed trial before the next one starts.
type TrialSink interface {
	Emit(ctx context.Context, trial domain.TrialResult) error
}

type RunObserver interface {
	OnDeployed(variant domain.ContractVariant, receipt domain.Receipt)
	OnBootstrap(receipt domain.OperationReceipt)
	OnTrial(trial domain.TrialResult)
}

type RunnerConfig struct {
	Variants  []domain.VariantSpec
	MaxTrials uint64
}

// Runner deploys every variant, bootstraps each once and then executes the
// trial schedule one transaction at a time.
type Runner struct {
	deployer VariantDeployer
	env      Environment
	sink     TrialSink
	observer RunObserver
	cfg      RunnerConfig
	state    State
	variants []domain.ContractVariant
	used     map[common.Address]struct{}
}

func NewRunner(deployer VariantDeployer, env Environment, sink TrialSink, observer RunObserver, cfg RunnerConfig) (*Runner, error) {
	if deployer == nil || env == nil || sink == nil {
		return nil, errors.New("runner dependencies must not be nil")
	}
	if len(cfg.Variants) == 0 {
		return nil, errors.New("at least one variant is required")
	}
	seen := make(map[string]bool, len(cfg.Variants))
	for _, spec := range cfg.Variants {
		if seen[spec.Name] {
			return nil, fmt.Errorf("variant %s declared twice", spec.Name)
		}
		seen[spec.Name] = true
	}
	if cfg.MaxTrials == 0 {
		cfg.MaxTrials = 5
	}
	return &Runner{
		deployer: deployer,
		env:      env,
		sink:     sink,
		observer: observer,
		cfg:      cfg,
		state:    StateInit,
		used:     make(map[common.Address]struct{}),
	}, nil
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) Run(ctx context.Context) error {
	if r.state != StateInit {
		return fmt.Errorf("runner already in state %s", r.state)
	}

	ctx, span := otel.Tracer("mintbench/runner").Start(ctx, "benchmark.run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("variants", len(r.cfg.Variants)),
		attribute.Int64("max_trials", int64(r.cfg.MaxTrials)),
	)

	if err := r.run(ctx); err != nil {
		r.state = StateFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	r.state = StateDone
	return nil
}

func (r *Runner) run(ctx context.Context) error {
	r.state = StateDeploying
	for _, spec := range r.cfg.Variants {
		variant, receipt, err := r.deployer.Deploy(ctx, spec)
		if err != nil {
			return err
		}
		r.variants = append(r.variants, variant)
		if r.observer != nil {
			r.observer.OnDeployed(variant, receipt)
		}
	}

	r.state = StateBootstrapping
	if err := r.bootstrap(ctx); err != nil {
		return err
	}

	r.state = StateRunning
	for trialIndex := uint64(1); trialIndex <= r.cfg.MaxTrials; trialIndex++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		trial, err := r.runTrial(ctx, trialIndex)
		if err != nil {
			return err
		}
		if r.observer != nil {
			r.observer.OnTrial(trial)
		}
		if err := r.sink.Emit(ctx, trial); err != nil {
			return fmt.Errorf("emit trial %d: %w", trialIndex, err)
		}
	}
	return nil
}

// bootstrap mints one unit on each variant so that first-write storage
// initialization is excluded from the comparison.
func (r *Runner) bootstrap(ctx context.Context) error {
	to, err := r.freshAddress()
	if err != nil {
		return err
	}
	for _, variant := range r.variants {
		receipt, err := r.execute(ctx, variant, variant.Builder.Bootstrap(to), 0)
		if err != nil {
			return err
		}
		slog.Info("variant bootstrapped",
			"variant", variant.Name,
			"gas_used", receipt.GasUsed,
			"tx", receipt.TxHash.Hex(),
		)
		if r.observer != nil {
			r.observer.OnBootstrap(receipt)
		}
	}
	return nil
}

func (r *Runner) runTrial(ctx context.Context, trialIndex uint64) (domain.TrialResult, error) {
	to, err := r.freshAddress()
	if err != nil {
		return domain.TrialResult{}, &domain.TrialExecutionError{TrialIndex: trialIndex, Err: err}
	}

	trial := domain.TrialResult{
		TrialIndex: trialIndex,
		Receipts:   make([]domain.OperationReceipt, 0, len(r.variants)),
	}
	for _, variant := range r.variants {
		receipt, err := r.execute(ctx, variant, variant.Builder.Trial(to, trialIndex), trialIndex)
		if err != nil {
			return domain.TrialResult{}, err
		}
		slog.Debug("trial operation confirmed",
			"trial", trialIndex,
			"variant", variant.Name,
			"gas_used", receipt.GasUsed,
		)
		trial.Receipts = append(trial.Receipts, receipt)
	}
	return trial, nil
}

// execute submits a single invocation and waits for it to be mined. A zero
// trialIndex marks the bootstrap operation.
func (r *Runner) execute(ctx context.Context, variant domain.ContractVariant, inv domain.Invocation, trialIndex uint64) (domain.OperationReceipt, error) {
	name := "trial.operation"
	if trialIndex == 0 {
		name = "bootstrap.operation"
	}
	ctx, span := otel.Tracer("mintbench/runner").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("variant.name", variant.Name),
		attribute.String("invocation.method", inv.Method),
		attribute.Int64("trial.index", int64(trialIndex)),
	)

	receipt, err := r.submit(ctx, variant, inv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.OperationReceipt{}, &domain.TrialExecutionError{
			Variant:    variant.Name,
			TrialIndex: trialIndex,
			Err:        err,
		}
	}
	span.SetAttributes(attribute.Int64("gas.used", int64(receipt.GasUsed)))

	return domain.OperationReceipt{
		Variant:    variant.Name,
		TrialIndex: trialIndex,
		GasUsed:    receipt.GasUsed,
		TxHash:     receipt.TxHash,
	}, nil
}

func (r *Runner) submit(ctx context.Context, variant domain.ContractVariant, inv domain.Invocation) (domain.Receipt, error) {
	data, err := variant.ABI.Pack(inv.Method, inv.Args...)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("pack %s: %w", inv.Method, err)
	}
	to := variant.Address
	hash, err := r.env.Submit(ctx, &to, data)
	if err != nil {
		return domain.Receipt{}, err
	}
	return r.env.Await(ctx, hash)
}

func (r *Runner) freshAddress() (common.Address, error) {
	addr, err := r.env.FreshAddress()
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := r.used[addr]; ok {
		return common.Address{}, fmt.Errorf("receiving address %s reused", addr.Hex())
	}
	r.used[addr] = struct{}{}
	return addr, nil
}
