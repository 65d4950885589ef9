package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON records to a single topic, one synchronous write per record.
type Producer struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Producer{w: cfg.writer(), topic: cfg.Topic, now: time.Now}, nil
}

func (p *Producer) Topic() string { return p.topic }

// Publish marshals value to JSON and writes it under key.
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", p.topic, err)
	}
	msg := kafka.Message{Key: []byte(key), Value: b, Time: p.now()}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
