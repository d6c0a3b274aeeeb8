package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChangeKind labels what actually happened to an attendee record, so feed
// consumers can tell a real check-in transition from a cosmetic field edit.
type ChangeKind string

const (
	ChangeCheckIn   ChangeKind = "checkin"
	ChangeSwagClaim ChangeKind = "swag_claim"
	ChangeEdit      ChangeKind = "edit"
)

// ChangeEvent is one entry on the record-store change feed.
type ChangeEvent struct {
	ID          string     `json:"id"`
	Kind        ChangeKind `json:"kind"`
	AttendeeID  string     `json:"attendee_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	TicketTypes []string   `json:"ticket_types,omitempty"`
	At          time.Time  `json:"at"`
}

// NewChangeEvent builds an event with a unique id for consumer-side
// de-duplication.
func NewChangeEvent(kind ChangeKind, attendeeID, email, fullName string, ticketTypes []string) ChangeEvent {
	return ChangeEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		AttendeeID:  attendeeID,
		Email:       email,
		FullName:    fullName,
		TicketTypes: ticketTypes,
		At:          time.Now(),
	}
}

// Notifier publishes change events to whoever watches the feed. Publishing
// is best effort: a failed notification never fails the state transition it
// describes.
type Notifier interface {
	Publish(ev ChangeEvent) error
}

// RedisNotifier publishes change events on a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier creates a new redis-backed notifier
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
	}
}

// Publish sends the event to the configured channel.
func (n *RedisNotifier) Publish(ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	return nil
}

// NoopNotifier drops all events. Used by the CLIs and in tests that don't
// care about the feed.
type NoopNotifier struct{}

func (NoopNotifier) Publish(ChangeEvent) error { return nil }
