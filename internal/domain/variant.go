package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CapabilityMintable tags variants that expose a mint operation.
const CapabilityMintable = "mintable"

// VariantKind selects the call shape used to mint against a variant.
type VariantKind string

const (
	KindERC721  VariantKind = "erc721"
	KindERC721A VariantKind = "erc721a"
	KindERC1155 VariantKind = "erc1155"
)

func ParseVariantKind(raw string) (VariantKind, error) {
	switch kind := VariantKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case KindERC721, KindERC721A, KindERC1155:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown variant kind %q", raw)
	}
}

// VariantSpec declares a variant to benchmark before it is deployed.
type VariantSpec struct {
	Name string
	Kind VariantKind
}

// Invocation is a single contract call: the ABI method and its arguments.
type Invocation struct {
	Method string
	Args   []any
}

// InvocationBuilder produces the invocations for one variant kind.
type InvocationBuilder interface {
	// Methods lists the ABI methods the builder calls.
	Methods() []string
	Bootstrap(to common.Address) Invocation
	Trial(to common.Address, trialIndex uint64) Invocation
}

// ContractVariant is a deployed instance of a variant under test.
type ContractVariant struct {
	Name       string
	Kind       VariantKind
	Capability string
	Address    common.Address
	ABI        abi.ABI
	Builder    InvocationBuilder
}

// Artifact is a deployable contract: its ABI and creation bytecode.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}
