package kafka

import (
	"context"
	"testing"

	"mintbench/internal/domain"
	"mintbench/internal/streaming"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerEmit(t *testing.T) {
	writer := &recordingWriter{}
	producer, err := newProducer(writer, ProducerConfig{RunID: "run-7"})
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}

	err = producer.Emit(context.Background(), domain.TrialResult{
		TrialIndex: 3,
		Receipts: []domain.OperationReceipt{
			{Variant: "A", TrialIndex: 3, GasUsed: 50000},
			{Variant: "B", TrialIndex: 3, GasUsed: 40000},
		},
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := producer.PublishCompleted(context.Background(), 3); err != nil {
		t.Fatalf("publish completed: %v", err)
	}

	if len(writer.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(writer.messages))
	}
	first := writer.messages[0]
	if first.Topic != "mintbench-trials" {
		t.Errorf("topic = %q", first.Topic)
	}
	if string(first.Key) != "run-7:trial" {
		t.Errorf("key = %q", first.Key)
	}
	msg, err := streaming.Decode(first.Value)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.TrialIndex != 3 || len(msg.Receipts) != 2 || msg.Receipts[0].GasUsed != 50000 {
		t.Errorf("message = %+v", msg)
	}

	done, err := streaming.Decode(writer.messages[1].Value)
	if err != nil {
		t.Fatalf("decode completed: %v", err)
	}
	if done.Type != streaming.MessageTypeCompleted || done.Trials != 3 {
		t.Errorf("completed = %+v", done)
	}

	if err := producer.Close(); err != nil || !writer.closed {
		t.Errorf("close: %v closed=%v", err, writer.closed)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(ProducerConfig{RunID: "r"}); err == nil {
		t.Error("expected error without brokers")
	}
}
