// Package messaging announces generated events on NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"electional-engine/internal/domain"
	"electional-engine/internal/observability"
)

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "electional"

// Config holds NATS connection settings.
type Config struct {
	URL            string
	Prefix         string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect opens a NATS connection that logs disconnects and reconnects.
func Connect(cfg Config) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("electional-engine"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[nats] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}
	if cfg.ConnectTimeout > 0 {
		options = append(options, nats.Timeout(cfg.ConnectTimeout))
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Message is the payload published for each generated event.
type Message struct {
	Kind        string        `json:"kind"`
	Event       *domain.Event `json:"event"`
	PublishedAt time.Time     `json:"publishedAt"`
}

// Publisher publishes confirmed generated events to <prefix>.events.generated.
type Publisher struct {
	conn    Conn
	subject string
	now     func() time.Time
}

// NewPublisher creates a Publisher. An empty prefix uses DefaultPrefix.
func NewPublisher(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{
		conn:    conn,
		subject: prefix + ".events.generated",
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Subject returns the subject events are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// PublishGenerated encodes e and publishes it. The chart snapshot is left out
// of the message to keep it small.
func (p *Publisher) PublishGenerated(ctx context.Context, e *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ev := e.Clone()
	ev.ChartData = nil
	data, err := json.Marshal(Message{Kind: "generated", Event: ev, PublishedAt: p.now()})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.ID, err)
	}

	err = p.conn.Publish(p.subject, data)
	observability.RecordPublish(err)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", e.ID, err)
	}
	return nil
}
