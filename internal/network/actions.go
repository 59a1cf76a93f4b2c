package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/infra/cache"
)

// Player command names accepted over the socket.
const (
	CommandAdvanceDay      = "ADVANCE_DAY"
	CommandNextElection    = "ADVANCE_TO_NEXT_ELECTION"
	CommandNextYear        = "ADVANCE_TO_NEXT_YEAR"
	CommandCastVote        = "CAST_VOTE"
	CommandProposeBill     = "PROPOSE_BILL"
	CommandResolveElection = "RESOLVE_ELECTION"
	CommandStaffTask       = "ASSIGN_STAFF_TASK"
	CommandStatus          = "STATUS"
)

// VoteRequest answers a queued vote.
type VoteRequest struct {
	BillID string      `json:"bill_id"`
	Choice bill.Choice `json:"choice"`
}

// ProposeRequest files a player bill.
type ProposeRequest struct {
	Name           string     `json:"name"`
	Level          bill.Level `json:"level"`
	JurisdictionID string     `json:"jurisdiction_id"`
	Policies       []string   `json:"policies"`
	PublicSupport  float64    `json:"public_support"`
}

// ResolveRequest decides a pending election.
type ResolveRequest struct {
	ElectionID string `json:"election_id"`
}

// StaffTaskRequest delegates a staff task.
type StaffTaskRequest struct {
	Kind string `json:"kind"`
}

// FastForwardResponse reports a multi-day advance.
type FastForwardResponse struct {
	Days   int          `json:"days"`
	Status cache.Status `json:"status"`
}

func (r ProposeRequest) bill() bill.Bill {
	return bill.Bill{
		ID:             "bill_" + events.NewID(),
		Name:           r.Name,
		Level:          r.Level,
		JurisdictionID: r.JurisdictionID,
		Policies:       r.Policies,
		PublicSupport:  r.PublicSupport,
	}
}

// execute runs one named command against the session.
func execute(ctx context.Context, s *engine.Session, kind string, raw json.RawMessage) (interface{}, error) {
	switch kind {
	case CommandAdvanceDay:
		return s.AdvanceDay(ctx)
	case CommandNextElection:
		return fastForward(ctx, s, s.AdvanceToNextElection)
	case CommandNextYear:
		return fastForward(ctx, s, s.AdvanceToNextYear)
	case CommandStatus:
		return cache.StatusOf(s.Campaign()), nil
	case CommandCastVote:
		var req VoteRequest
		if err := decodePayload(raw, &req); err != nil {
			return nil, err
		}
		return s.CastVote(ctx, req.BillID, req.Choice)
	case CommandProposeBill:
		var req ProposeRequest
		if err := decodePayload(raw, &req); err != nil {
			return nil, err
		}
		return s.ProposeBill(ctx, req.bill())
	case CommandResolveElection:
		var req ResolveRequest
		if err := decodePayload(raw, &req); err != nil {
			return nil, err
		}
		return s.ResolveElection(ctx, req.ElectionID)
	case CommandStaffTask:
		var req StaffTaskRequest
		if err := decodePayload(raw, &req); err != nil {
			return nil, err
		}
		return s.AssignStaffTask(ctx, req.Kind)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", engine.ErrInvalidCommand, kind)
	}
}

func fastForward(ctx context.Context, s *engine.Session, run func(context.Context) ([]*engine.TickResult, error)) (FastForwardResponse, error) {
	results, err := run(ctx)
	return FastForwardResponse{Days: len(results), Status: cache.StatusOf(s.Campaign())}, err
}

func decodePayload(raw json.RawMessage, into interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", engine.ErrInvalidCommand)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidCommand, err)
	}
	return nil
}
