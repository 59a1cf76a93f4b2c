// Package collaborators declares the black-box generators the simulation
// consumes: statistics, budgets, world events, news articles, coalitions and
// AI bill authoring. The engine depends only on these interfaces; package
// baseline ships simple implementations.
package collaborators

import (
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// StatInput is the context for one jurisdiction's monthly statistic update.
type StatInput struct {
	Date         calendar.GameDate
	Jurisdiction campaign.Jurisdiction
	PassedBills  []bill.Bill // resolved since the last monthly pass
	Catalog      []bill.Policy
}

// StatOutput is an additive delta plus any news it warrants.
type StatOutput struct {
	Delta campaign.Delta
	News  []events.NewsItem
}

// StatUpdater computes monthly statistic changes.
type StatUpdater interface {
	UpdateStats(in StatInput) (StatOutput, error)
}

// BudgetInput is the context for one jurisdiction's monthly budget.
type BudgetInput struct {
	Date         calendar.GameDate
	Jurisdiction campaign.Jurisdiction
	Regional     bool
}

// BudgetOutput replaces the jurisdiction budget lines and adjusts stats.
type BudgetOutput struct {
	Budget map[string]float64
	Delta  campaign.Delta
	News   []events.NewsItem
}

// BudgetUpdater computes monthly budgets.
type BudgetUpdater interface {
	UpdateBudget(in BudgetInput) (BudgetOutput, error)
}

// EventContext is what a world-event generator may look at.
type EventContext struct {
	Date          calendar.GameDate
	Jurisdictions []campaign.Jurisdiction
	Scheduled     bool
}

// EventGenerator produces world events; a nil event means nothing happened.
type EventGenerator interface {
	Generate(ctx EventContext) (*events.WorldEvent, error)
	// Scheduled returns the administrative events fixed to a date.
	Scheduled(ctx EventContext) ([]events.WorldEvent, error)
}

// NewsProcessor turns an event into an article.
type NewsProcessor interface {
	Article(ev events.WorldEvent) (events.NewsItem, error)
	FollowUp(ev events.WorldEvent) (events.NewsItem, error)
}

// CoalitionReport summarizes a mobilization pass.
type CoalitionReport struct {
	Summary string
	// ApprovalShift is a per-party popularity nudge derived from bloc moods.
	ApprovalShift map[string]float64
	News          []events.NewsItem
}

// CoalitionInput is the opaque coalition state plus this month's events.
type CoalitionInput struct {
	Date       calendar.GameDate
	Coalitions map[string]campaign.Coalition
	Events     []events.WorldEvent
	Electorate map[string]float64
	Parties    map[string]map[string]float64 // party -> ideology
}

// CoalitionOutput is the updated coalition state.
type CoalitionOutput struct {
	Coalitions map[string]campaign.Coalition
	Report     CoalitionReport
}

// CoalitionEngine reacts to events and mobilizes voter blocs.
type CoalitionEngine interface {
	Process(in CoalitionInput) (CoalitionOutput, error)
}

// Actor is a bill author: a legislator or a synthesized advocacy group.
type Actor struct {
	ID       string
	Name     string
	PartyID  string
	Source   bill.Source
	Ideology map[string]float64 // axis -> stance in [-1, 1]
	// Focus restricts authoring to one axis; empty means any.
	Focus string
}

// AuthorInput is the context for AI bill authoring.
type AuthorInput struct {
	Date           calendar.GameDate
	Actor          Actor
	Level          bill.Level
	JurisdictionID string
	Catalog        []bill.Policy
	Stats          campaign.Stats
	Existing       []bill.Bill
}

// BillAuthor drafts a bill; nil means the actor passes this month.
type BillAuthor interface {
	Author(in AuthorInput) (*bill.Bill, error)
}

// Set bundles every collaborator the engine needs.
type Set struct {
	Stats      StatUpdater
	Budget     BudgetUpdater
	Events     EventGenerator
	News       NewsProcessor
	Coalitions CoalitionEngine
	Author     BillAuthor
}
