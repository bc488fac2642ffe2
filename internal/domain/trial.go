package domain

// TrialResult holds one receipt per declared variant for a trial index.
type TrialResult struct {
	TrialIndex uint64
	Receipts   []OperationReceipt
}

// Receipt returns the receipt recorded for the named variant.
func (t TrialResult) Receipt(variant string) (OperationReceipt, bool) {
	for _, receipt := range t.Receipts {
		if receipt.Variant == variant {
			return receipt, true
		}
	}
	return OperationReceipt{}, false
}
