package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"mintbench/internal/domain"
	"mintbench/internal/infrastructure/telemetry"
	"mintbench/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer streams each completed trial to a topic as it is emitted.
type Producer struct {
	writer MessageWriter
	topic  string
	runID  string
}

type ProducerConfig struct {
	Brokers []string
	Topic   string
	RunID   string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer, cfg)
}

func newProducer(writer MessageWriter, cfg ProducerConfig) (*Producer, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "mintbench-trials"
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		return nil, errors.New("run id is required")
	}
	return &Producer{writer: writer, topic: cfg.Topic, runID: cfg.RunID}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Emit publishes a trial result. It satisfies application.TrialSink.
func (p *Producer) Emit(ctx context.Context, trial domain.TrialResult) error {
	ctx, span := otel.Tracer("mintbench/kafka").Start(ctx, "report.publish_trial", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("trial.index", int64(trial.TrialIndex)),
		attribute.String("run.id", p.runID),
	)

	receipts := make([]streaming.ReceiptPayload, 0, len(trial.Receipts))
	for _, receipt := range trial.Receipts {
		receipts = append(receipts, streaming.ReceiptPayload{
			Variant: receipt.Variant,
			GasUsed: receipt.GasUsed,
			TxHash:  receipt.TxHash.Hex(),
		})
	}
	err := p.publish(ctx, "trial", streaming.Message{
		Type:       streaming.MessageTypeTrial,
		RunID:      p.runID,
		TraceID:    span.SpanContext().TraceID().String(),
		TrialIndex: trial.TrialIndex,
		Receipts:   receipts,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// PublishCompleted marks the end of a run that finished every trial.
func (p *Producer) PublishCompleted(ctx context.Context, trials uint64) error {
	return p.publish(ctx, "completed", streaming.Message{
		Type:   streaming.MessageTypeCompleted,
		RunID:  p.runID,
		Trials: trials,
	})
}

func (p *Producer) publish(ctx context.Context, key string, msg streaming.Message) error {
	payload, err := streaming.Encode(msg)
	if err != nil {
		return err
	}
	headers := make([]kafka.Header, 0, 2)
	telemetry.InjectKafkaHeaders(ctx, &headers)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(p.runID + ":" + key),
		Value:   payload,
		Headers: headers,
	})
}
