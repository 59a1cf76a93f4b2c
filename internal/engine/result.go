package engine

import (
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// BillUpdate describes one bill transition applied during a tick.
type BillUpdate struct {
	BillID    string      `json:"billId"`
	Level     bill.Level  `json:"level"`
	FromStage string      `json:"fromStage"`
	ToStage   string      `json:"toStage"`
	From      bill.Status `json:"from"`
	To        bill.Status `json:"to"`
	Error     string      `json:"error,omitempty"`
}

// PoliticalUpdates are the values written by the political phase.
type PoliticalUpdates struct {
	ApprovalRating   map[string]float64            `json:"approvalRating,omitempty"`
	PoliticalCapital map[string]float64            `json:"politicalCapital,omitempty"`
	CapitalReasons   map[string][]string           `json:"capitalReasons,omitempty"`
	PartyPopularity  map[string]map[string]float64 `json:"partyPopularity,omitempty"`
}

// TickResult is everything one simulated day produced.
type TickResult struct {
	Date             calendar.GameDate   `json:"date"`
	NewsItems        []events.NewsItem   `json:"newsItems"`
	BillUpdates      []BillUpdate        `json:"billUpdates"`
	NewBills         []bill.Bill         `json:"newBills"`
	Events           []events.WorldEvent `json:"events"`
	PoliticalUpdates PoliticalUpdates    `json:"politicalUpdates"`
	Errors           []PhaseError        `json:"errors"`
	ExecutionOrder   []string            `json:"executionOrder"`
	// Effects is the log the caller applies: notifications, news and audit
	// events, in the order they were produced.
	Effects []events.GameEvent `json:"effects"`
}

func (r *TickResult) merge(o *TickResult) {
	r.NewsItems = append(r.NewsItems, o.NewsItems...)
	r.BillUpdates = append(r.BillUpdates, o.BillUpdates...)
	r.NewBills = append(r.NewBills, o.NewBills...)
	r.Events = append(r.Events, o.Events...)
	r.Errors = append(r.Errors, o.Errors...)
	r.ExecutionOrder = append(r.ExecutionOrder, o.ExecutionOrder...)
	r.Effects = append(r.Effects, o.Effects...)
	p := o.PoliticalUpdates
	if p.ApprovalRating != nil {
		r.PoliticalUpdates.ApprovalRating = p.ApprovalRating
	}
	if p.PoliticalCapital != nil {
		r.PoliticalUpdates.PoliticalCapital = p.PoliticalCapital
		r.PoliticalUpdates.CapitalReasons = p.CapitalReasons
	}
	for id, pop := range p.PartyPopularity {
		if r.PoliticalUpdates.PartyPopularity == nil {
			r.PoliticalUpdates.PartyPopularity = map[string]map[string]float64{}
		}
		r.PoliticalUpdates.PartyPopularity[id] = pop
	}
}
