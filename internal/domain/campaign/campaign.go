// Package campaign defines the aggregate root the simulation ticks over.
// This package is PURE and must NOT import any infrastructure packages.
package campaign

import (
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
)

// Jurisdiction is a city, region (state) or country.
type Jurisdiction struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Level            bill.Level              `json:"level"`
	ParentID         string                  `json:"parentId,omitempty"`
	ExecutiveID      string                  `json:"executiveId,omitempty"`
	ExecutivePartyID string                  `json:"executivePartyId,omitempty"`
	Chambers         map[politician.Body]int `json:"chambers"` // seats per body
	Seats            map[string]int          `json:"seats"`    // party -> seats in the main chamber
	Popularity       map[string]float64      `json:"popularity"`
	Stats            Stats                   `json:"stats"`
	Budget           map[string]float64      `json:"budget,omitempty"`
}

// TotalSeats sums party seats.
func (j Jurisdiction) TotalSeats() int {
	total := 0
	for _, n := range j.Seats {
		total += n
	}
	return total
}

// SeatShare is the fraction of seats held by party.
func (j Jurisdiction) SeatShare(partyID string) float64 {
	total := j.TotalSeats()
	if total == 0 {
		return 0
	}
	return float64(j.Seats[partyID]) / float64(total)
}

// MajorityParty returns the party with the most seats, ties broken by id.
func (j Jurisdiction) MajorityParty() string {
	best, bestSeats := "", -1
	for _, id := range sortedKeys(j.Seats) {
		if j.Seats[id] > bestSeats {
			best, bestSeats = id, j.Seats[id]
		}
	}
	return best
}

func (j Jurisdiction) clone() Jurisdiction {
	out := j
	out.Chambers = make(map[politician.Body]int, len(j.Chambers))
	for k, v := range j.Chambers {
		out.Chambers[k] = v
	}
	out.Seats = copyMap(j.Seats)
	out.Popularity = copyMap(j.Popularity)
	out.Budget = copyMap(j.Budget)
	return out
}

// Candidate runs in an election.
type Candidate struct {
	PoliticianID string  `json:"politicianId"`
	PartyID      string  `json:"partyId"`
	Support      float64 `json:"support"` // poll share 0-100
	Funds        float64 `json:"funds"`
	Incumbent    bool    `json:"incumbent"`
}

// Election is a scheduled contest for one office.
type Election struct {
	ID             string            `json:"id"`
	Level          bill.Level        `json:"level"`
	JurisdictionID string            `json:"jurisdictionId"`
	Office         string            `json:"office"`
	Body           politician.Body   `json:"body"`
	Date           calendar.GameDate `json:"date"`
	Candidates     []Candidate       `json:"candidates"`
	Resolved       bool              `json:"resolved"`
	WinnerID       string            `json:"winnerId,omitempty"`
}

// HasCandidate reports whether the politician is running.
func (e Election) HasCandidate(id string) bool {
	for _, c := range e.Candidates {
		if c.PoliticianID == id {
			return true
		}
	}
	return false
}

// QueuedVote asks a politician (usually the player) for a ballot by a date.
type QueuedVote struct {
	ID           string            `json:"id"`
	BillID       string            `json:"billId"`
	Level        bill.Level        `json:"level"`
	Stage        string            `json:"stage"`
	VoterID      string            `json:"voterId"`
	ScheduledFor calendar.GameDate `json:"scheduledFor"`
	Choice       bill.Choice       `json:"choice,omitempty"`
}

// StaffTask is delegated work that completes after a number of days.
type StaffTask struct {
	ID             string  `json:"id"`
	PoliticianID   string  `json:"politicianId"`
	Kind           string  `json:"kind"`
	Description    string  `json:"description"`
	DaysRemaining  int     `json:"daysRemaining"`
	CapitalEffect  float64 `json:"capitalEffect"`
	ApprovalEffect float64 `json:"approvalEffect"`
}

// BillOutcome remembers a resolution until the monthly political pass.
type BillOutcome struct {
	BillID         string            `json:"billId"`
	ProposerID     string            `json:"proposerId"`
	Level          bill.Level        `json:"level"`
	JurisdictionID string            `json:"jurisdictionId"`
	Status         bill.Status       `json:"status"`
	PublicSupport  float64           `json:"publicSupport"`
	ResolvedOn     calendar.GameDate `json:"resolvedOn"`
}

// Coalition is a voter bloc tracked for the external coalition engine.
type Coalition struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Axis         string  `json:"axis"`
	Lean         float64 `json:"lean"`         // preferred stance on Axis in [-1, 1]
	Size         float64 `json:"size"`         // share of electorate 0-100
	Satisfaction float64 `json:"satisfaction"` // 0-100
	Mobilization float64 `json:"mobilization"` // 0-100
}

// Campaign is the aggregate root of a running game.
type Campaign struct {
	ID                string                      `json:"id"`
	Name              string                      `json:"name"`
	CurrentDate       calendar.GameDate           `json:"currentDate"`
	PoliticalSystemID string                      `json:"politicalSystemId"`
	PlayerID          string                      `json:"playerId"`
	Politicians       *politician.Store           `json:"-"`
	Parties           map[string]politician.Party `json:"parties"`

	CityID        string                  `json:"cityId"`
	RegionIDs     []string                `json:"regionIds"`
	CountryID     string                  `json:"countryId"`
	Jurisdictions map[string]Jurisdiction `json:"jurisdictions"`

	Bills          map[bill.Level][]bill.Bill `json:"bills"`
	ArchivedBills  []bill.Bill                `json:"archivedBills"`
	RecentOutcomes []BillOutcome              `json:"recentOutcomes"`
	PolicyCatalog  []bill.Policy              `json:"policyCatalog"`

	Elections         []Election   `json:"elections"`
	PendingElectionID string       `json:"pendingElectionId,omitempty"`
	VoteQueue         []QueuedVote `json:"voteQueue"`
	StaffTasks        []StaffTask  `json:"staffTasks"`

	Electorate map[string]float64   `json:"electorate"` // axis -> mean stance in [-1, 1]
	Coalitions map[string]Coalition `json:"coalitions"`
}

// City returns the player's city.
func (c *Campaign) City() (Jurisdiction, bool) {
	j, ok := c.Jurisdictions[c.CityID]
	return j, ok && c.CityID != ""
}

// JurisdictionIDs returns ids for a level in a stable order.
func (c *Campaign) JurisdictionIDs(level bill.Level) []string {
	var out []string
	for _, id := range sortedKeys(c.Jurisdictions) {
		if c.Jurisdictions[id].Level == level {
			out = append(out, id)
		}
	}
	return out
}

// SetJurisdiction replaces a jurisdiction entry.
func (c *Campaign) SetJurisdiction(j Jurisdiction) {
	if c.Jurisdictions == nil {
		c.Jurisdictions = map[string]Jurisdiction{}
	}
	c.Jurisdictions[j.ID] = j.clone()
}

// Jurisdiction returns a copy of a jurisdiction.
func (c *Campaign) Jurisdiction(id string) (Jurisdiction, bool) {
	j, ok := c.Jurisdictions[id]
	if !ok {
		return Jurisdiction{}, false
	}
	return j.clone(), true
}

// FindBill locates an active bill by id.
func (c *Campaign) FindBill(id string) (bill.Bill, bool) {
	for _, level := range bill.Levels {
		for _, b := range c.Bills[level] {
			if b.ID == id {
				return b.Clone(), true
			}
		}
	}
	return bill.Bill{}, false
}

// ReplaceBill swaps an active bill for its new version.
func (c *Campaign) ReplaceBill(b bill.Bill) bool {
	list := c.Bills[b.Level]
	for i := range list {
		if list[i].ID == b.ID {
			list[i] = b.Clone()
			return true
		}
	}
	return false
}

// AddBill appends a new active bill.
func (c *Campaign) AddBill(b bill.Bill) {
	if c.Bills == nil {
		c.Bills = map[bill.Level][]bill.Bill{}
	}
	c.Bills[b.Level] = append(c.Bills[b.Level], b.Clone())
}

// ActiveBills returns copies of every active bill, city first.
func (c *Campaign) ActiveBills() []bill.Bill {
	var out []bill.Bill
	for _, level := range bill.Levels {
		for _, b := range c.Bills[level] {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Election returns an election by id.
func (c *Campaign) Election(id string) (Election, int, bool) {
	for i, e := range c.Elections {
		if e.ID == id {
			return e, i, true
		}
	}
	return Election{}, -1, false
}

// Clone deep-copies the campaign for copy-on-write ticks.
func (c *Campaign) Clone() *Campaign {
	out := *c
	if c.Politicians != nil {
		out.Politicians = c.Politicians.Clone()
	}
	out.Parties = make(map[string]politician.Party, len(c.Parties))
	for id, p := range c.Parties {
		p.Ideology = copyMap(p.Ideology)
		out.Parties[id] = p
	}
	out.RegionIDs = append([]string(nil), c.RegionIDs...)
	out.Jurisdictions = make(map[string]Jurisdiction, len(c.Jurisdictions))
	for id, j := range c.Jurisdictions {
		out.Jurisdictions[id] = j.clone()
	}
	out.Bills = make(map[bill.Level][]bill.Bill, len(c.Bills))
	for level, list := range c.Bills {
		copied := make([]bill.Bill, len(list))
		for i, b := range list {
			copied[i] = b.Clone()
		}
		out.Bills[level] = copied
	}
	out.ArchivedBills = append([]bill.Bill(nil), c.ArchivedBills...)
	out.RecentOutcomes = append([]BillOutcome(nil), c.RecentOutcomes...)
	out.PolicyCatalog = append([]bill.Policy(nil), c.PolicyCatalog...)
	out.Elections = make([]Election, len(c.Elections))
	for i, e := range c.Elections {
		e.Candidates = append([]Candidate(nil), e.Candidates...)
		out.Elections[i] = e
	}
	out.VoteQueue = append([]QueuedVote(nil), c.VoteQueue...)
	out.StaffTasks = append([]StaffTask(nil), c.StaffTasks...)
	out.Electorate = copyMap(c.Electorate)
	out.Coalitions = make(map[string]Coalition, len(c.Coalitions))
	for id, co := range c.Coalitions {
		out.Coalitions[id] = co
	}
	return &out
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
