// Package schedule maps each variant kind to the mint invocations used to
// bootstrap it and to exercise it at a given trial index.
package schedule

import (
	"fmt"
	"math/big"

	"mintbench/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// tokenID is the single id every ERC1155 mint targets.
var tokenID = big.NewInt(1)

// ForKind returns the invocation builder for a variant kind.
func ForKind(kind domain.VariantKind) (domain.InvocationBuilder, error) {
	switch kind {
	case domain.KindERC721:
		return erc721{}, nil
	case domain.KindERC721A:
		return erc721a{}, nil
	case domain.KindERC1155:
		return erc1155{}, nil
	default:
		return nil, fmt.Errorf("no invocation builder for kind %q", kind)
	}
}

// Units is the number of logical tokens a trial materializes.
func Units(trialIndex uint64) uint64 {
	return trialIndex
}

// erc721 mints sequential ids one by one inside mintBatch.
type erc721 struct{}

func (erc721) Methods() []string { return []string{"safeMint", "mintBatch"} }

func (erc721) Bootstrap(to common.Address) domain.Invocation {
	return domain.Invocation{Method: "safeMint", Args: []any{to}}
}

func (erc721) Trial(to common.Address, trialIndex uint64) domain.Invocation {
	return domain.Invocation{
		Method: "mintBatch",
		Args:   []any{to, new(big.Int).SetUint64(Units(trialIndex))},
	}
}

// erc721a mints a quantity in a single batched write.
type erc721a struct{}

func (erc721a) Methods() []string { return []string{"safeMint"} }

func (erc721a) Bootstrap(to common.Address) domain.Invocation {
	return domain.Invocation{Method: "safeMint", Args: []any{to, big.NewInt(1)}}
}

func (erc721a) Trial(to common.Address, trialIndex uint64) domain.Invocation {
	return domain.Invocation{
		Method: "safeMint",
		Args:   []any{to, new(big.Int).SetUint64(Units(trialIndex))},
	}
}

// erc1155 mints an amount of the fungible id 1 with empty data.
type erc1155 struct{}

func (erc1155) Methods() []string { return []string{"mint"} }

func (erc1155) Bootstrap(to common.Address) domain.Invocation {
	return domain.Invocation{Method: "mint", Args: []any{to, tokenID, big.NewInt(1), []byte{}}}
}

func (erc1155) Trial(to common.Address, trialIndex uint64) domain.Invocation {
	return domain.Invocation{
		Method: "mint",
		Args:   []any{to, tokenID, new(big.Int).SetUint64(Units(trialIndex)), []byte{}},
	}
}
