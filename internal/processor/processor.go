// Package processor turns inventory events into availability cache refreshes.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kart-pricing/internal/eventbus"
	"kart-pricing/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// DepositCreatedEvent is published when stock of an item changes.
type DepositCreatedEvent struct {
	EventID   string    `json:"eventId"`
	DepositID uuid.UUID `json:"depositId"`
	ItemID    uuid.UUID `json:"itemId"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Processor refreshes cached availability for deposit events.
type Processor struct {
	availability service.AvailabilityService
	logger       zerolog.Logger
}

// New creates a processor.
func New(availability service.AvailabilityService, logger zerolog.Logger) *Processor {
	return &Processor{
		availability: availability,
		logger:       logger.With().Str("component", "deposit-processor").Logger(),
	}
}

// MessageHandler handles one deposit.created delivery. Malformed events fail
// permanently; refresh errors are returned for a retry.
func (p *Processor) MessageHandler(ctx context.Context, delivery amqp.Delivery) error {
	var event DepositCreatedEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		p.logger.Error().Err(err).Msg("failed to unmarshal deposit event")
		return fmt.Errorf("invalid deposit event: %v: %w", err, eventbus.ErrPermanentFailure)
	}
	if event.ItemID == uuid.Nil {
		p.logger.Error().Str("event_id", event.EventID).Msg("deposit event without item id")
		return fmt.Errorf("deposit event %s has no item id: %w", event.EventID, eventbus.ErrPermanentFailure)
	}

	p.logger.Debug().
		Str("event_id", event.EventID).
		Str("item_id", event.ItemID.String()).
		Int("quantity", event.Quantity).
		Msg("deposit event received")

	if err := p.availability.RefreshItem(ctx, event.ItemID); err != nil {
		return fmt.Errorf("failed to refresh availability for item %s: %w", event.ItemID, err)
	}
	return nil
}
