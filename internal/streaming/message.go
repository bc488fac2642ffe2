package streaming

import (
	"encoding/json"
	"errors"
)

type MessageType string

const (
	MessageTypeTrial     MessageType = "trial"
	MessageTypeCompleted MessageType = "completed"
)

type ReceiptPayload struct {
	Variant string `json:"variant"`
	GasUsed uint64 `json:"gas_used"`
	TxHash  string `json:"tx_hash,omitempty"`
}

type Message struct {
	Type       MessageType      `json:"type"`
	RunID      string           `json:"run_id"`
	TraceID    string           `json:"trace_id,omitempty"`
	TrialIndex uint64           `json:"trial_index,omitempty"`
	Receipts   []ReceiptPayload `json:"receipts,omitempty"`
	Trials     uint64           `json:"trials,omitempty"`
}

func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, errors.New("message type is required")
	}
	if msg.RunID == "" {
		return nil, errors.New("run_id is required")
	}
	if msg.Type == MessageTypeTrial && msg.TrialIndex == 0 {
		return nil, errors.New("trial_index is required")
	}
	return json.Marshal(msg)
}

func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type is missing")
	}
	if msg.RunID == "" {
		return Message{}, errors.New("run_id is missing")
	}
	return msg, nil
}
