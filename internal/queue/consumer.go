package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/mailer"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Recipients looks up where to send a notification.
type Recipients interface {
	ContactEmail(ctx context.Context, ref model.OwnerRef) (name, email string, err error)
}

// templates maps notification names onto mail templates.
var templates = map[string]string{
	"reservation_approved": mailer.ReservationApprovedTemplate,
}

// Consumer drains the notification queue into the mailer.
type Consumer struct {
	url        string
	queue      string
	recipients Recipients
	mail       mailer.Client
	log        *zap.SugaredLogger
}

// NewConsumer returns a consumer that mails each notification to its recipient.
func NewConsumer(url, queue string, recipients Recipients, mail mailer.Client, log *zap.SugaredLogger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Consumer{url: url, queue: queue, recipients: recipients, mail: mail, log: log}
}

// StartNotificationConsumer runs c in the background until ctx ends.
func StartNotificationConsumer(ctx context.Context, c *Consumer) {
	go func() {
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Errorw("notification consumer stopped", "error", err)
		}
	}()
}

// Run keeps a consumer attached to the broker, reconnecting with
// exponential backoff.  It returns only when ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warnw("notification consumer: dial failed", "error", err, "retry_in", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warnw("notification consumer: loop ended, reconnecting", "error", err)
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warnw("notification consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.log.Errorw("notification consumer: handle failed", "error", err)
				// Not requeued; a poison message would loop forever.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle delivers one envelope.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var env NotificationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ref, err := env.Recipient()
	if err != nil {
		return err
	}
	tmpl, ok := templates[env.Template]
	if !ok {
		return fmt.Errorf("unknown template %q", env.Template)
	}
	var data map[string]any
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &data); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}
	name, email, err := c.recipients.ContactEmail(ctx, ref)
	if err != nil {
		return fmt.Errorf("recipient %s: %w", ref, err)
	}
	if err := c.mail.Send(tmpl, name, email, data); err != nil {
		return err
	}
	c.log.Infow("notification sent", "template", env.Template, "recipient", ref.String())
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
