// Package progression is the bill stage state machine. It initializes a bill
// at stage 1 of its workflow, advances it one stage at a time as scheduled
// dates arrive and votes are cast, and resolves it to passed or failed.
//
// The engine is pure: every operation takes a bill value and returns a new
// one. The returned bill is always safe to store, even alongside an error.
package progression

import (
	"errors"
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/legislation/committee"
	"github.com/MRamiBalles/Legislatura/internal/legislation/workflow"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

var (
	// ErrStageConfiguration marks an unknown system or stage. The bill is put
	// in status error and never retried.
	ErrStageConfiguration = errors.New("stage configuration error")
	// ErrRequirementsNotMet marks a soft failure. The bill is stalled and
	// retried on the next eligible tick.
	ErrRequirementsNotMet = errors.New("stage requirements not met")
)

// StageError ties a progression failure to a bill and stage.
type StageError struct {
	BillID string
	Stage  string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bill %s stage %q: %v", e.BillID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Age ceilings in days before a stuck bill is force-advanced.
const (
	CityAgeCeiling  = 21
	OtherAgeCeiling = 45
)

// AgeCeiling returns the force-advance threshold for a level.
func AgeCeiling(level bill.Level) int {
	if level == bill.LevelCity {
		return CityAgeCeiling
	}
	return OtherAgeCeiling
}

// Body is the composition of the body deciding the current stage.
type Body struct {
	Chamber politician.Body
	Size    int
	Members []string
	// ExecutiveID is the office holder whose nay is a veto.
	ExecutiveID string
}

// Seats is the declared size, or the member count when no size is known.
func (b Body) Seats() int {
	if b.Size > 0 {
		return b.Size
	}
	return len(b.Members)
}

// NextStage previews the stage that follows the current one.
type NextStage struct {
	Stage        string
	Kind         bill.StageKind
	ScheduledFor calendar.GameDate
	Requirements []workflow.Requirement
}

// Engine advances bills through the workflow catalog.
type Engine struct {
	workflows  *workflow.Catalog
	committees *committee.Catalog
	rng        random.Source
}

// New builds an engine. Nil catalogs fall back to the embedded defaults.
func New(workflows *workflow.Catalog, committees *committee.Catalog, rng random.Source) *Engine {
	if workflows == nil {
		workflows = workflow.MustDefault()
	}
	if committees == nil {
		committees = committee.MustDefault()
	}
	return &Engine{workflows: workflows, committees: committees, rng: rng}
}

// Workflow resolves the workflow for a bill level under a political system.
func (e *Engine) Workflow(systemID string, level bill.Level) (workflow.Workflow, error) {
	w, err := e.workflows.Lookup(systemID, level)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("%w: %w", ErrStageConfiguration, err)
	}
	return w, nil
}

// Stage resolves the definition of the bill's current stage.
func (e *Engine) Stage(b bill.Bill, systemID string) (workflow.StageDefinition, error) {
	w, err := e.Workflow(systemID, b.Level)
	if err != nil {
		return workflow.StageDefinition{}, err
	}
	def, err := w.Stage(b.CurrentStage)
	if err != nil {
		return workflow.StageDefinition{}, fmt.Errorf("%w: %w", ErrStageConfiguration, err)
	}
	return def, nil
}

// Initialize places a new bill at stage 1 of its workflow. Bills that are
// terminal or already sit in a valid stage are returned unchanged.
func (e *Engine) Initialize(b bill.Bill, systemID string, today calendar.GameDate) (bill.Bill, error) {
	out := b.Clone()
	if out.Terminal() {
		return out, nil
	}
	w, err := e.Workflow(systemID, out.Level)
	if err != nil {
		return e.markError(out, err)
	}
	if out.CurrentStage != "" {
		if w.Index(out.CurrentStage) < 0 {
			return e.markError(out, fmt.Errorf("%w: %s in %s", workflow.ErrUnknownStage, out.CurrentStage, w.ID))
		}
		return out, nil
	}
	if out.ProposedOn.IsZero() {
		out.ProposedOn = today
	}
	e.enter(&out, w.First(), today)
	return out, nil
}

// NextStage previews the stage after the current one, with its earliest
// possible date if the current stage completed on its scheduled date.
// ok is false when the current stage is the last one or the bill is terminal.
func (e *Engine) NextStage(b bill.Bill, systemID string, today calendar.GameDate) (NextStage, bool, error) {
	if b.Terminal() {
		return NextStage{}, false, nil
	}
	w, err := e.Workflow(systemID, b.Level)
	if err != nil {
		return NextStage{}, false, err
	}
	next, ok, err := w.After(b.CurrentStage)
	if err != nil {
		return NextStage{}, false, fmt.Errorf("%w: %w", ErrStageConfiguration, err)
	}
	if !ok {
		return NextStage{}, false, nil
	}
	start := calendar.Max(today, b.StageScheduledFor)
	lead := next.Duration.Min
	if next.Kind.VoteBearing() && next.Vote.Min > lead {
		lead = next.Vote.Min
	}
	return NextStage{
		Stage:        next.Step,
		Kind:         next.Kind,
		ScheduledFor: start.AddDays(lead),
		Requirements: append([]workflow.Requirement(nil), next.Requirements...),
	}, true, nil
}

// CheckRequirements evaluates the requirements of stage for the bill. A
// false result is a soft failure; an error is a configuration problem.
func (e *Engine) CheckRequirements(b bill.Bill, stage string, body Body, systemID string) (bool, error) {
	w, err := e.Workflow(systemID, b.Level)
	if err != nil {
		return false, err
	}
	def, err := w.Stage(stage)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStageConfiguration, err)
	}
	for _, req := range def.Requirements {
		switch req {
		case workflow.RequireProposer:
			if b.ProposerID == "" {
				return false, nil
			}
		case workflow.RequirePolicies:
			if len(b.Policies) == 0 {
				return false, nil
			}
		case workflow.RequireCommitteeAssigned:
			d, ok := b.Detail.(*bill.CommitteeDetail)
			if !ok || d.CommitteeID == "" {
				return false, nil
			}
		case workflow.RequireQuorum:
			if body.Seats() == 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: unknown requirement %q on %s", ErrStageConfiguration, req, stage)
		}
	}
	return true, nil
}

// Due reports whether the bill needs an Advance call today: its stage date
// has arrived or it has outlived the age ceiling.
func (e *Engine) Due(b bill.Bill, today calendar.GameDate) bool {
	if b.Terminal() || b.Status == bill.StatusError || b.Legacy {
		return false
	}
	return today.OnOrAfter(b.StageScheduledFor) || b.DaysInStage(today) > AgeCeiling(b.Level)
}

// Advance processes the bill's current stage. votes are merged into the
// ballots already cast for the stage. At most one stage transition happens
// per call.
func (e *Engine) Advance(b bill.Bill, votes map[string]bill.Choice, body Body, systemID string, today calendar.GameDate) (bill.Bill, error) {
	out := b.Clone()
	if out.Terminal() || out.Status == bill.StatusError {
		return out, nil
	}
	if out.CurrentStage == "" {
		return e.Initialize(out, systemID, today)
	}
	w, err := e.Workflow(systemID, out.Level)
	if err != nil {
		return e.markError(out, err)
	}
	def, err := w.Stage(out.CurrentStage)
	if err != nil {
		return e.markError(out, fmt.Errorf("%w: %w", ErrStageConfiguration, err))
	}

	for voter, choice := range votes {
		if !choice.Valid() {
			continue
		}
		if out.VotesCast == nil {
			out.VotesCast = map[string]bill.Choice{}
		}
		out.VotesCast[voter] = choice
	}

	forced := out.DaysInStage(today) > AgeCeiling(out.Level)
	due := today.OnOrAfter(out.StageScheduledFor)
	if !due && !forced {
		return out, nil
	}

	met, err := e.CheckRequirements(out, def.Step, body, systemID)
	if err != nil {
		return e.markError(out, err)
	}
	if !met && !forced {
		out.Status = bill.StatusStalled
		return out, &StageError{BillID: out.ID, Stage: def.Step, Err: ErrRequirementsNotMet}
	}
	bypassed := !due || !met
	record := bill.RecordPassed
	if forced && bypassed {
		record = bill.RecordForced
	}

	switch {
	case def.Kind == bill.KindProcedural:
		e.moveOn(&out, w, def, today, record)

	case def.Kind.Voting():
		tally := bill.Count(out.VotesCast)
		if tally.Total() == 0 {
			if !forced {
				out.Status = bill.StatusPendingVote
				return out, nil
			}
			record = bill.RecordForced
			if _, more, _ := w.After(def.Step); more {
				e.moveOn(&out, w, def, today, record)
				return out, nil
			}
		}
		size := body.Seats()
		if d, ok := out.Detail.(*bill.CommitteeDetail); ok && d.Size > 0 {
			size = d.Size
		}
		e.recordSize(&out, size)
		bill.RecordTally(out.Detail, tally)
		t := tally
		out.FinalTally = &t
		if tally.Passes(size) {
			e.moveOn(&out, w, def, today, record)
		} else {
			out.CompleteStage(today, bill.RecordFailed)
			out.MarkFailed(today, &t)
		}

	case def.Kind == bill.KindExecutive:
		d, _ := out.Detail.(*bill.ExecutiveDetail)
		if d == nil {
			d = &bill.ExecutiveDetail{DecisionDueOn: out.StageScheduledFor}
			out.Detail = d
		}
		if d.ExecutiveID == "" {
			d.ExecutiveID = body.ExecutiveID
		}
		if vetoed(out.VotesCast, d.ExecutiveID) {
			d.Decision = "vetoed"
			out.CompleteStage(today, bill.RecordFailed)
			out.MarkFailed(today, out.FinalTally)
			return out, nil
		}
		d.Decision = "signed"
		e.moveOn(&out, w, def, today, record)
	}
	return out, nil
}

// vetoed reports an executive nay. Without a known executive any nay counts.
func vetoed(votes map[string]bill.Choice, executiveID string) bool {
	if executiveID != "" {
		return votes[executiveID] == bill.Nay
	}
	for _, c := range votes {
		if c == bill.Nay {
			return true
		}
	}
	return false
}

func (e *Engine) moveOn(b *bill.Bill, w workflow.Workflow, def workflow.StageDefinition, today calendar.GameDate, record string) {
	b.CompleteStage(today, record)
	next, ok, _ := w.After(def.Step)
	if !ok {
		b.MarkPassed(today, b.FinalTally)
		return
	}
	e.enter(b, next, today)
}

// enter moves the bill into def. Vote-bearing stages fix their vote or
// decision date here, once.
func (e *Engine) enter(b *bill.Bill, def workflow.StageDefinition, today calendar.GameDate) {
	scheduled := today.AddDays(e.jitter(def.Duration))
	var detail bill.Detail
	if def.Kind.VoteBearing() {
		voteOn := calendar.Max(today.AddDays(e.jitter(def.Vote)), b.StageScheduledFor)
		scheduled = calendar.Max(scheduled, voteOn)
		switch def.Kind {
		case bill.KindCommittee:
			cm := e.committees.Assign(b.Policies)
			detail = &bill.CommitteeDetail{CommitteeID: cm.ID, CommitteeName: cm.Name, Size: cm.Size, VoteScheduledFor: voteOn}
		case bill.KindCouncil:
			detail = &bill.CouncilDetail{VoteScheduledFor: voteOn}
		case bill.KindFloor:
			detail = &bill.FloorDetail{Chamber: string(def.Chamber), VoteScheduledFor: voteOn}
		case bill.KindExecutive:
			detail = &bill.ExecutiveDetail{DecisionDueOn: voteOn}
		}
	}
	b.EnterStage(def.Step, today, scheduled)
	b.Detail = detail
	b.Status = def.Status()
}

func (e *Engine) recordSize(b *bill.Bill, size int) {
	switch d := b.Detail.(type) {
	case *bill.CouncilDetail:
		d.CouncilSize = size
	case *bill.FloorDetail:
		d.ChamberSize = size
	}
}

func (e *Engine) jitter(d workflow.Duration) int {
	if e.rng == nil {
		return d.Min
	}
	return random.Between(e.rng, d.Min, d.Max)
}

func (e *Engine) markError(b bill.Bill, err error) (bill.Bill, error) {
	b.Status = bill.StatusError
	b.LastError = err.Error()
	if !errors.Is(err, ErrStageConfiguration) {
		err = fmt.Errorf("%w: %w", ErrStageConfiguration, err)
	}
	return b, &StageError{BillID: b.ID, Stage: b.CurrentStage, Err: err}
}
