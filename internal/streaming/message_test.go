package streaming

import "testing"

func TestEncodeDecodeTrial(t *testing.T) {
	payload, err := Encode(Message{
		Type:       MessageTypeTrial,
		RunID:      "run-1",
		TrialIndex: 2,
		Receipts: []ReceiptPayload{
			{Variant: "Standard721", GasUsed: 80000},
			{Variant: "Standard1155", GasUsed: 35000},
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.TrialIndex != 2 || len(msg.Receipts) != 2 {
		t.Fatalf("decoded = %+v", msg)
	}
	if msg.Receipts[1].Variant != "Standard1155" || msg.Receipts[1].GasUsed != 35000 {
		t.Errorf("receipt = %+v", msg.Receipts[1])
	}
}

func TestEncodeValidation(t *testing.T) {
	cases := []Message{
		{RunID: "run-1"},
		{Type: MessageTypeTrial, TrialIndex: 1},
		{Type: MessageTypeTrial, RunID: "run-1"},
	}
	for i, msg := range cases {
		if _, err := Encode(msg); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if _, err := Encode(Message{Type: MessageTypeCompleted, RunID: "run-1", Trials: 5}); err != nil {
		t.Errorf("completed message: %v", err)
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"trial"}`)); err == nil {
		t.Error("expected error for missing run_id")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid json")
	}
}
