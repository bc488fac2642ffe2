package domain

import "github.com/ethereum/go-ethereum/common"

// Receipt represents a transaction receipt from the chain.
type Receipt struct {
	TxHash            common.Hash
	BlockNumber       uint64
	Status            uint64
	GasUsed           uint64
	CumulativeGasUsed uint64
	ContractAddress   common.Address
	EffectiveGasPrice string
}

// Succeeded reports whether the transaction executed without reverting.
func (r Receipt) Succeeded() bool {
	return r.Status == 1
}

// OperationReceipt is the gas measurement of one mint against one variant.
type OperationReceipt struct {
	Variant    string
	TrialIndex uint64
	GasUsed    uint64
	TxHash     common.Hash
}
