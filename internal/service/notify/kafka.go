package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	drepo "Sentinel/internal/domain/repository"
)

// Publisher is the subset of the kafka producer the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Topic() string
}

// Digest is the message body written to the topic.
type Digest struct {
	ID     string    `json:"id"`
	To     string    `json:"to,omitempty"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// KafkaNotifier writes each push as one Digest keyed by destination.
type KafkaNotifier struct {
	pub Publisher
	now func() time.Time
}

func NewKafkaNotifier(pub Publisher) *KafkaNotifier {
	return &KafkaNotifier{pub: pub, now: time.Now}
}

var _ drepo.Notifier = (*KafkaNotifier)(nil)

func (n *KafkaNotifier) Name() string { return "kafka" }

func (n *KafkaNotifier) Push(ctx context.Context, to, text string) error {
	d := Digest{ID: uuid.NewString(), To: to, Text: text, SentAt: n.now().UTC()}
	if err := n.pub.Publish(ctx, to, d); err != nil {
		return fmt.Errorf("kafka publish %s: %w", n.pub.Topic(), err)
	}
	return nil
}
