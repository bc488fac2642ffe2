package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mintbench/internal/domain"
	"mintbench/internal/schedule"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrMissingCapability = errors.New("artifact does not expose the mint capability")

type ArtifactSource interface {
	Load(name string) (domain.Artifact, error)
}

// Environment is the execution environment the harness drives.
type Environment interface {
	Submit(ctx context.Context, to *common.Address, data []byte) (common.Hash, error)
	Await(ctx context.Context, hash common.Hash) (domain.Receipt, error)
	FreshAddress() (common.Address, error)
}

type Deployer struct {
	artifacts ArtifactSource
	env       Environment
}

func NewDeployer(artifacts ArtifactSource, env Environment) (*Deployer, error) {
	if artifacts == nil || env == nil {
		return nil, errors.New("deployer dependencies must not be nil")
	}
	return &Deployer{artifacts: artifacts, env: env}, nil
}

// Deploy creates a new instance of the variant on every call and binds the
// invocation builder for its kind.
func (d *Deployer) Deploy(ctx context.Context, spec domain.VariantSpec) (domain.ContractVariant, domain.Receipt, error) {
	ctx, span := otel.Tracer("mintbench/deployer").Start(ctx, "deploy")
	defer span.End()
	span.SetAttributes(
		attribute.String("variant.name", spec.Name),
		attribute.String("variant.kind", string(spec.Kind)),
	)

	variant, receipt, err := d.deploy(ctx, spec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ContractVariant{}, receipt, &domain.DeploymentError{Variant: spec.Name, Err: err}
	}
	span.SetAttributes(attribute.String("contract.address", variant.Address.Hex()))
	return variant, receipt, nil
}

func (d *Deployer) deploy(ctx context.Context, spec domain.VariantSpec) (domain.ContractVariant, domain.Receipt, error) {
	builder, err := schedule.ForKind(spec.Kind)
	if err != nil {
		return domain.ContractVariant{}, domain.Receipt{}, err
	}
	art, err := d.artifacts.Load(spec.Name)
	if err != nil {
		return domain.ContractVariant{}, domain.Receipt{}, err
	}
	for _, method := range builder.Methods() {
		if _, ok := art.ABI.Methods[method]; !ok {
			return domain.ContractVariant{}, domain.Receipt{}, fmt.Errorf("%w: missing %s", ErrMissingCapability, method)
		}
	}

	hash, err := d.env.Submit(ctx, nil, art.Bytecode)
	if err != nil {
		return domain.ContractVariant{}, domain.Receipt{}, err
	}
	receipt, err := d.env.Await(ctx, hash)
	if err != nil {
		return domain.ContractVariant{}, receipt, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return domain.ContractVariant{}, receipt, fmt.Errorf("receipt %s has no contract address", hash.Hex())
	}

	slog.Info("variant deployed",
		"variant", spec.Name,
		"kind", spec.Kind,
		"address", receipt.ContractAddress.Hex(),
		"gas_used", receipt.GasUsed,
	)

	return domain.ContractVariant{
		Name:       spec.Name,
		Kind:       spec.Kind,
		Capability: domain.CapabilityMintable,
		Address:    receipt.ContractAddress,
		ABI:        art.ABI,
		Builder:    builder,
	}, receipt, nil
}
