// Package queue carries notifications over RabbitMQ: the publisher used by
// the reservation workflow and the consumer that turns them into email.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// NotificationEnvelope is the persistent message body on the
// notification queue.
type NotificationEnvelope struct {
	RecipientKind model.ActorKind `json:"recipient_kind"`
	RecipientID   uint64          `json:"recipient_id"`
	Template      string          `json:"template"`
	Payload       json.RawMessage `json:"payload"`
	QueuedAt      string          `json:"queued_at"`
}

// NewEnvelope encodes payload for recipient.
func NewEnvelope(recipient model.OwnerRef, template string, payload any, now time.Time) (NotificationEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return NotificationEnvelope{}, fmt.Errorf("marshal payload: %w", err)
	}
	return NotificationEnvelope{
		RecipientKind: recipient.Kind,
		RecipientID:   recipient.ID,
		Template:      template,
		Payload:       raw,
		QueuedAt:      now.UTC().Format(time.RFC3339),
	}, nil
}

// Recipient validates and returns the addressed principal.
func (e NotificationEnvelope) Recipient() (model.OwnerRef, error) {
	return model.NewOwnerRef(e.RecipientKind, e.RecipientID)
}
