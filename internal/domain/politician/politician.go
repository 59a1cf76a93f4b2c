// Package politician defines the columnar politician store and parties.
// This package is PURE and must NOT import any infrastructure packages.
//
// Politicians are split into two id-keyed maps: an immutable Base record
// (identity) and a mutable State record (everything the simulation moves).
// State entries are value types and are only ever replaced wholesale.
package politician

import (
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// Body identifies which legislative body a seat belongs to.
type Body string

const (
	BodyNone      Body = ""
	BodyCouncil   Body = "council"
	BodyLower     Body = "lower"
	BodyUpper     Body = "upper"
	BodyExecutive Body = "executive"
)

// MaxActionPoints is the daily resource budget reset every tick.
const MaxActionPoints = 3

// Base is the immutable identity of a politician.
type Base struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PartyID   string `json:"partyId"`
	BirthYear int    `json:"birthYear"`
	IsPlayer  bool   `json:"isPlayer"`
}

// Office is the seat currently held.
type Office struct {
	Level          bill.Level `json:"level"`
	JurisdictionID string     `json:"jurisdictionId"`
	Body           Body       `json:"body"`
	Title          string     `json:"title"`
	Committees     []string   `json:"committees,omitempty"`
}

// State is the mutable record of a politician.
type State struct {
	ApprovalRating   float64            `json:"approvalRating"`
	PoliticalCapital float64            `json:"politicalCapital"`
	Age              int                `json:"age"`
	Office           *Office            `json:"office,omitempty"`
	ActionPoints     int                `json:"actionPoints"`
	LastElectionWin  *calendar.GameDate `json:"lastElectionWin,omitempty"`
	WonAsIncumbent   bool               `json:"wonAsIncumbent,omitempty"`
}

// Incumbent reports an office holder.
func (s State) Incumbent() bool {
	return s.Office != nil && s.Office.Body != BodyNone
}

// WithOffice returns a copy holding office (nil to vacate).
func (s State) WithOffice(o *Office) State {
	if o != nil {
		c := *o
		c.Committees = append([]string(nil), o.Committees...)
		o = &c
	}
	s.Office = o
	return s
}

func (s State) clone() State {
	out := s.WithOffice(s.Office)
	if s.LastElectionWin != nil {
		d := *s.LastElectionWin
		out.LastElectionWin = &d
	}
	return out
}

// Store is the columnar politician store.
type Store struct {
	base  map[string]Base
	state map[string]State
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{base: map[string]Base{}, state: map[string]State{}}
}

// Add registers a politician. The base record is never replaced afterwards.
func (s *Store) Add(b Base, st State) {
	if _, exists := s.base[b.ID]; exists {
		return
	}
	s.base[b.ID] = b
	s.state[b.ID] = st.clone()
}

// Base reads the immutable record.
func (s *Store) Base(id string) (Base, bool) {
	b, ok := s.base[id]
	return b, ok
}

// State reads a copy of the mutable record.
func (s *Store) State(id string) (State, bool) {
	st, ok := s.state[id]
	if !ok {
		return State{}, false
	}
	return st.clone(), true
}

// SetState replaces the mutable record of an existing politician.
func (s *Store) SetState(id string, st State) bool {
	if _, ok := s.base[id]; !ok {
		return false
	}
	s.state[id] = st.clone()
	return true
}

// IDs returns all ids sorted so iteration is deterministic.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.base))
	for id := range s.base {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of politicians.
func (s *Store) Len() int { return len(s.base) }

// PlayerID returns the player politician, if any.
func (s *Store) PlayerID() (string, bool) {
	for _, id := range s.IDs() {
		if s.base[id].IsPlayer {
			return id, true
		}
	}
	return "", false
}

// Members lists politicians seated in a body of a jurisdiction.
func (s *Store) Members(jurisdictionID string, body Body) []string {
	var out []string
	for _, id := range s.IDs() {
		st := s.state[id]
		if st.Office != nil && st.Office.JurisdictionID == jurisdictionID && st.Office.Body == body {
			out = append(out, id)
		}
	}
	return out
}

// CommitteeMembers lists politicians sitting on a committee in a jurisdiction.
func (s *Store) CommitteeMembers(jurisdictionID, committeeID string) []string {
	var out []string
	for _, id := range s.IDs() {
		st := s.state[id]
		if st.Office == nil || st.Office.JurisdictionID != jurisdictionID {
			continue
		}
		for _, c := range st.Office.Committees {
			if c == committeeID {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Clone copies the state map. The base map is shared because it is never
// written after Add.
func (s *Store) Clone() *Store {
	out := &Store{base: s.base, state: make(map[string]State, len(s.state))}
	for id, st := range s.state {
		out.state[id] = st.clone()
	}
	return out
}

// Snapshot exposes both columns for persistence.
type Snapshot struct {
	Base  map[string]Base  `json:"base"`
	State map[string]State `json:"state"`
}

// Snapshot copies both maps.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Base: make(map[string]Base, len(s.base)), State: make(map[string]State, len(s.state))}
	for id, b := range s.base {
		snap.Base[id] = b
	}
	for id, st := range s.state {
		snap.State[id] = st.clone()
	}
	return snap
}

// FromSnapshot rebuilds a store.
func FromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	for id, b := range snap.Base {
		s.base[id] = b
		s.state[id] = snap.State[id].clone()
	}
	return s
}
