package storage

import (
	"context"
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// Reconstructor restores the in-memory event log from the ledger and
// builds the "while you were away" recap.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RecapEntry is a simplified event for the recap screen.
type RecapEntry struct {
	Date      calendar.GameDate `json:"date"`
	EventType events.EventType  `json:"eventType"`
	Summary   string            `json:"summary"`
	Impact    events.Impact     `json:"impact"`
}

// Restore loads every stored event of the campaign into log.
func (r *Reconstructor) Restore(ctx context.Context, campaignID string, log *events.EventLog) (int, error) {
	evs, err := r.eventRepo.EventsByCampaign(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to restore event log: %w", err)
	}
	log.Load(evs)
	return len(evs), nil
}

// Recap lists what happened to playerID since the given date: bill
// resolutions, election results, requested votes and staff work.
func (r *Reconstructor) Recap(ctx context.Context, campaignID, playerID string, since calendar.GameDate) ([]RecapEntry, error) {
	evs, err := r.eventRepo.EventsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	var recap []RecapEntry
	for _, e := range evs {
		if e.Date.Before(since) {
			continue
		}
		impact, ok := events.Classify(e, playerID)
		if !ok {
			continue
		}
		recap = append(recap, RecapEntry{Date: e.Date, EventType: e.Type, Summary: e.Message, Impact: impact})
	}
	return recap, nil
}
