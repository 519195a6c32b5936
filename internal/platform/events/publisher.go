// Package events publishes mission lifecycle changes to the back-office
// event stream. Downstream consumers (billing, notifications, reporting)
// react to status changes without polling the gateway.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// StatusChange is emitted after every successful mission transition.
type StatusChange struct {
	MissionID     string    `json:"mission_id"`
	MissionNumber string    `json:"mission_number"`
	DriverID      int64     `json:"driver_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits mission events. Publishing is best-effort from the
// state machine's point of view: a failed emit is logged, never rolled
// into the transition result.
type Publisher interface {
	PublishStatusChange(ctx context.Context, event StatusChange) error
	Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChange(context.Context, StatusChange) error { return nil }
func (NoopPublisher) Close()                                                  {}

func encode(event StatusChange) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode status change event: %w", err)
	}
	return payload, nil
}
