package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

const headerEventType = "event-type"

// KafkaPublisher writes booking events keyed by booking id, so every event of
// one booking lands on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	errorLog := logger.With("component", "kafka")
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  compress.Lz4,
			BatchTimeout: cfg.BatchTimeout,
			Logger:       kafka.LoggerFunc(func(string, ...any) {}),
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
				errorLog.Error("kafka writer error", "detail", msg, "args", args)
			}),
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt shared.BookingEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "encode booking event")
	}
	msg := kafka.Message{
		Key:     []byte(evt.BookingID.String()),
		Value:   payload,
		Time:    evt.OccurredAt,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(evt.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Mark(errs.Wrap(err, "publish booking event"), errs.ErrDependency)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func (p NoopPublisher) Publish(_ context.Context, evt shared.BookingEvent) error {
	p.logger.Debug("booking event dropped (no brokers)", "type", evt.Type, "booking_id", evt.BookingID)
	return nil
}

func (p NoopPublisher) Close() error { return nil }

type Publisher interface {
	shared.EventPublisher
	Close() error
}

func New(cfg config.KafkaConfig, logger *slog.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{logger: logger}
	}
	return NewKafkaPublisher(cfg, logger)
}
