package schedule

import (
	"math/big"
	"testing"

	"mintbench/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

func TestForKindUnknown(t *testing.T) {
	if _, err := ForKind("erc20"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTrialInvocations(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	cases := []struct {
		kind       domain.VariantKind
		method     string
		bootMethod string
		amountArg  int
	}{
		{kind: domain.KindERC721, method: "mintBatch", bootMethod: "safeMint", amountArg: 1},
		{kind: domain.KindERC721A, method: "safeMint", bootMethod: "safeMint", amountArg: 1},
		{kind: domain.KindERC1155, method: "mint", bootMethod: "mint", amountArg: 2},
	}

	for _, tc := range cases {
		builder, err := ForKind(tc.kind)
		if err != nil {
			t.Fatalf("ForKind(%s): %v", tc.kind, err)
		}

		boot := builder.Bootstrap(to)
		if boot.Method != tc.bootMethod {
			t.Errorf("%s bootstrap method = %q, want %q", tc.kind, boot.Method, tc.bootMethod)
		}
		if boot.Args[0] != to {
			t.Errorf("%s bootstrap recipient = %v, want %v", tc.kind, boot.Args[0], to)
		}

		for trial := uint64(1); trial <= 5; trial++ {
			inv := builder.Trial(to, trial)
			if inv.Method != tc.method {
				t.Errorf("%s trial method = %q, want %q", tc.kind, inv.Method, tc.method)
			}
			if inv.Args[0] != to {
				t.Errorf("%s trial recipient = %v, want %v", tc.kind, inv.Args[0], to)
			}
			amount, ok := inv.Args[tc.amountArg].(*big.Int)
			if !ok {
				t.Fatalf("%s amount arg has type %T", tc.kind, inv.Args[tc.amountArg])
			}
			if amount.Uint64() != trial {
				t.Errorf("%s trial %d amount = %s", tc.kind, trial, amount)
			}
		}

		found := false
		for _, method := range builder.Methods() {
			if method == tc.method {
				found = true
			}
		}
		if !found {
			t.Errorf("%s Methods() = %v, missing %q", tc.kind, builder.Methods(), tc.method)
		}
	}
}

func TestERC1155TargetsSingleID(t *testing.T) {
	builder, err := ForKind(domain.KindERC1155)
	if err != nil {
		t.Fatalf("ForKind: %v", err)
	}
	for trial := uint64(1); trial <= 3; trial++ {
		inv := builder.Trial(common.Address{}, trial)
		if id := inv.Args[1].(*big.Int); id.Int64() != 1 {
			t.Errorf("trial %d id = %s, want 1", trial, id)
		}
	}
}
