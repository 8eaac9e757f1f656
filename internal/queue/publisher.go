package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// DefaultQueue is used when no queue name is configured.
const DefaultQueue = "notifications"

// Publisher implements service.Notifier on a durable RabbitMQ queue.  The
// connection and channel are opened on first use and reopened after a
// failed publish.
type Publisher struct {
	url   string
	queue string
	log   *zap.SugaredLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher; the connection is opened on first use.
func NewPublisher(url, queue string, log *zap.SugaredLogger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Publisher{url: url, queue: queue, log: log}
}

// Notify publishes a persistent envelope.  Errors are logged and returned;
// callers treat delivery as best-effort.
func (p *Publisher) Notify(ctx context.Context, recipient model.OwnerRef, template string, payload any) error {
	env, err := NewEnvelope(recipient, template, payload, time.Now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		p.log.Errorw("rabbitmq: connect failed", "error", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Errorw("rabbitmq: publish failed", "template", template, "recipient", recipient.String(), "error", err)
		p.reset()
		return err
	}
	return nil
}

// channel returns the open channel or dials a new one.  Caller holds mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
