package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig describes the topic a Producer writes to.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	Compression  string // gzip, snappy, lz4 or zstd
	RequiredAcks int    // -1 waits for all in-sync replicas
	MaxAttempts  int
	WriteTimeout time.Duration
}

func (c ProducerConfig) validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: brokers are required")
	}
	if c.Topic == "" {
		return errors.New("kafka: topic is required")
	}
	return nil
}

func (c ProducerConfig) writer() *kafka.Writer {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(c.RequiredAcks),
		Compression:            compression(c.Compression),
		MaxAttempts:            attempts,
		WriteTimeout:           timeout,
		BatchSize:              1,
		AllowAutoTopicCreation: true,
	}
}

func compression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}
