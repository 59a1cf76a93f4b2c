package bill

import (
	"encoding/json"
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// StageKind classifies a workflow stage and selects its detail payload.
type StageKind string

const (
	KindProcedural StageKind = "procedural"
	KindCommittee  StageKind = "committee"
	KindCouncil    StageKind = "council"
	KindFloor      StageKind = "floor"
	KindExecutive  StageKind = "executive"
)

// Voting reports stages decided by a tally of cast votes.
func (k StageKind) Voting() bool {
	return k == KindCommittee || k == KindCouncil || k == KindFloor
}

// VoteBearing reports stages whose decision date is scheduled once on entry.
func (k StageKind) VoteBearing() bool {
	return k.Voting() || k == KindExecutive
}

// Valid reports a known kind.
func (k StageKind) Valid() bool {
	switch k {
	case KindProcedural, KindCommittee, KindCouncil, KindFloor, KindExecutive:
		return true
	}
	return false
}

// Detail is the stage-kind payload of a bill. Exactly one variant is set,
// matching the kind of the current stage; procedural stages carry none.
type Detail interface {
	Kind() StageKind
	// DecisionDate is the memoized vote/decision date; zero until scheduled.
	DecisionDate() calendar.GameDate
	clone() Detail
}

// CommitteeDetail is carried while a bill sits in a committee stage.
type CommitteeDetail struct {
	CommitteeID      string            `json:"committeeId"`
	CommitteeName    string            `json:"committeeName"`
	Size             int               `json:"size"`
	VoteScheduledFor calendar.GameDate `json:"voteScheduledFor"`
	Tally            *Tally            `json:"tally,omitempty"`
}

// CouncilDetail is carried during a city council vote.
type CouncilDetail struct {
	CouncilSize      int               `json:"councilSize"`
	VoteScheduledFor calendar.GameDate `json:"voteScheduledFor"`
	Tally            *Tally            `json:"tally,omitempty"`
}

// FloorDetail is carried during chamber floor consideration.
type FloorDetail struct {
	Chamber          string            `json:"chamber"`
	ChamberSize      int               `json:"chamberSize"`
	VoteScheduledFor calendar.GameDate `json:"voteScheduledFor"`
	Tally            *Tally            `json:"tally,omitempty"`
}

// ExecutiveDetail is carried while a bill awaits the executive's signature.
type ExecutiveDetail struct {
	ExecutiveID   string            `json:"executiveId"`
	DecisionDueOn calendar.GameDate `json:"decisionDueOn"`
	Decision      string            `json:"decision,omitempty"` // signed | vetoed
}

func (d *CommitteeDetail) Kind() StageKind                 { return KindCommittee }
func (d *CommitteeDetail) DecisionDate() calendar.GameDate { return d.VoteScheduledFor }
func (d *CommitteeDetail) clone() Detail                   { c := *d; c.Tally = cloneTally(d.Tally); return &c }

func (d *CouncilDetail) Kind() StageKind                 { return KindCouncil }
func (d *CouncilDetail) DecisionDate() calendar.GameDate { return d.VoteScheduledFor }
func (d *CouncilDetail) clone() Detail                   { c := *d; c.Tally = cloneTally(d.Tally); return &c }

func (d *FloorDetail) Kind() StageKind                 { return KindFloor }
func (d *FloorDetail) DecisionDate() calendar.GameDate { return d.VoteScheduledFor }
func (d *FloorDetail) clone() Detail                   { c := *d; c.Tally = cloneTally(d.Tally); return &c }

func (d *ExecutiveDetail) Kind() StageKind                 { return KindExecutive }
func (d *ExecutiveDetail) DecisionDate() calendar.GameDate { return d.DecisionDueOn }
func (d *ExecutiveDetail) clone() Detail                   { c := *d; return &c }

func cloneTally(t *Tally) *Tally {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// RecordTally stores the tally on a voting detail. Non-voting details ignore it.
func RecordTally(d Detail, t Tally) {
	switch v := d.(type) {
	case *CommitteeDetail:
		v.Tally = &t
	case *CouncilDetail:
		v.Tally = &t
	case *FloorDetail:
		v.Tally = &t
	}
}

type detailEnvelope struct {
	Kind    StageKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type billAlias Bill

type billJSON struct {
	billAlias
	Detail *detailEnvelope `json:"detail,omitempty"`
}

// MarshalJSON writes the detail as a {kind, payload} envelope.
func (b Bill) MarshalJSON() ([]byte, error) {
	out := billJSON{billAlias: billAlias(b)}
	if b.Detail != nil {
		payload, err := json.Marshal(b.Detail)
		if err != nil {
			return nil, fmt.Errorf("marshal %s detail: %w", b.Detail.Kind(), err)
		}
		out.Detail = &detailEnvelope{Kind: b.Detail.Kind(), Payload: payload}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the typed detail from its envelope.
func (b *Bill) UnmarshalJSON(data []byte) error {
	var in billJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*b = Bill(in.billAlias)
	if in.Detail == nil {
		return nil
	}
	var target Detail
	switch in.Detail.Kind {
	case KindCommittee:
		target = &CommitteeDetail{}
	case KindCouncil:
		target = &CouncilDetail{}
	case KindFloor:
		target = &FloorDetail{}
	case KindExecutive:
		target = &ExecutiveDetail{}
	default:
		return fmt.Errorf("unknown stage detail kind %q", in.Detail.Kind)
	}
	if err := json.Unmarshal(in.Detail.Payload, target); err != nil {
		return fmt.Errorf("unmarshal %s detail: %w", in.Detail.Kind, err)
	}
	b.Detail = target
	return nil
}
