// Package storage persists campaigns, bills and the event log.
// The engine never imports this package; it is wired by the server.
package storage

import (
	"context"
	"errors"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// ErrNotFound is returned when a campaign has never been saved.
var ErrNotFound = errors.New("storage: not found")

// BillRecord is the minimum persisted shape of a bill.
type BillRecord struct {
	ID                string             `json:"id"`
	Level             bill.Level         `json:"level"`
	Status            bill.Status        `json:"status"`
	CurrentStage      string             `json:"currentStage"`
	StageScheduledFor calendar.GameDate  `json:"stageScheduledFor"`
	StageHistory      []bill.StageRecord `json:"stageHistory"`
	Policies          []string           `json:"policies"`
}

// RecordOf projects a bill onto its persisted shape.
func RecordOf(b bill.Bill) BillRecord {
	return BillRecord{
		ID:                b.ID,
		Level:             b.Level,
		Status:            b.Status,
		CurrentStage:      b.CurrentStage,
		StageScheduledFor: b.StageScheduledFor,
		StageHistory:      append([]bill.StageRecord{}, b.StageHistory...),
		Policies:          append([]string{}, b.Policies...),
	}
}

// CampaignRepository stores campaign snapshots.
type CampaignRepository interface {
	// SaveCampaign writes the snapshot and its bill records atomically.
	SaveCampaign(ctx context.Context, c *campaign.Campaign) error

	// LoadCampaign returns ErrNotFound for unknown ids.
	LoadCampaign(ctx context.Context, id string) (*campaign.Campaign, error)

	// Bills lists the persisted bill records, optionally filtered by status.
	Bills(ctx context.Context, campaignID string, status bill.Status) ([]BillRecord, error)
}

// EventRepository is the durable event log.
type EventRepository interface {
	// AppendEvent adds an event to the immutable ledger.
	AppendEvent(ctx context.Context, e events.GameEvent) error

	// EventsByCampaign retrieves all events of a campaign in write order.
	EventsByCampaign(ctx context.Context, campaignID string) ([]events.GameEvent, error)

	// EventsByType retrieves all events of a specific type.
	EventsByType(ctx context.Context, campaignID string, t events.EventType) ([]events.GameEvent, error)

	// EventsByDate retrieves all events of one simulated day.
	EventsByDate(ctx context.Context, campaignID string, d calendar.GameDate) ([]events.GameEvent, error)
}
