package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// Saver persists a campaign after it changes.
type Saver interface {
	SaveCampaign(ctx context.Context, c *campaign.Campaign) error
}

// Observer is told about every committed tick.
type Observer func(c *campaign.Campaign, res *TickResult)

// Session owns the running campaign and serializes every command against it.
type Session struct {
	mu        sync.Mutex
	engine    *Engine
	campaign  *campaign.Campaign
	log       *events.EventLog
	saver     Saver
	observers []Observer
	logger    *logger.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSaver enables autosave after each committed change.
func WithSaver(s Saver) SessionOption {
	return func(ss *Session) { ss.saver = s }
}

// WithEventLog routes tick effects into log.
func WithEventLog(log *events.EventLog) SessionOption {
	return func(ss *Session) { ss.log = log }
}

// NewSession starts a session on c.
func NewSession(e *Engine, c *campaign.Campaign, log *logger.Logger, opts ...SessionOption) *Session {
	s := &Session{engine: e, campaign: c, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	if s.log == nil {
		s.log = events.NewEventLog(nil)
	}
	return s
}

// Observe registers fn for committed ticks.
func (s *Session) Observe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Campaign returns a snapshot of the current campaign.
func (s *Session) Campaign() *campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaign.Clone()
}

// Events exposes the session event log.
func (s *Session) Events() *events.EventLog { return s.log }

// AdvanceDay simulates one day.
func (s *Session) AdvanceDay(ctx context.Context) (*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, res, err := s.engine.AdvanceDay(s.campaign)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, next, res)
	return res, nil
}

// AdvanceToNextElection fast-forwards to the next election date.
func (s *Session) AdvanceToNextElection(ctx context.Context) ([]*TickResult, error) {
	return s.fastForward(ctx, s.engine.AdvanceToNextElection)
}

// AdvanceToNextYear fast-forwards to January 1st.
func (s *Session) AdvanceToNextYear(ctx context.Context) ([]*TickResult, error) {
	return s.fastForward(ctx, s.engine.AdvanceToNextYear)
}

// AdvanceUntil fast-forwards until stop holds or an election is pending.
func (s *Session) AdvanceUntil(ctx context.Context, stop StopFunc) ([]*TickResult, error) {
	return s.fastForward(ctx, func(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, []*TickResult, error) {
		return s.engine.AdvanceUntil(ctx, c, stop)
	})
}

func (s *Session) fastForward(ctx context.Context, run func(context.Context, *campaign.Campaign) (*campaign.Campaign, []*TickResult, error)) ([]*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, results, err := run(ctx, s.campaign)
	if next != nil && len(results) > 0 {
		for _, res := range results {
			s.record(res.Effects)
		}
		s.campaign = next
		s.save(ctx)
		s.notify(results[len(results)-1])
	}
	return results, err
}

// ProposeBill files a player bill at its level's first stage. It costs one
// action point.
func (s *Session) ProposeBill(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	if !b.Level.Valid() {
		return bill.Bill{}, fmt.Errorf("%w: bill level %q", ErrInvalidCommand, b.Level)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTick(s.campaign.Clone(), s.campaign.CurrentDate)
	if err := spendActionPoint(t.c, t.c.PlayerID); err != nil {
		return bill.Bill{}, err
	}
	b.ProposerID = t.c.PlayerID
	b.Source = bill.SourcePlayer
	b.ProposedOn = t.today
	if b.JurisdictionID == "" {
		b.JurisdictionID = defaultJurisdiction(t.c, b.Level)
	}
	if _, ok := t.c.Jurisdictions[b.JurisdictionID]; !ok {
		return bill.Bill{}, fmt.Errorf("%w: bill jurisdiction %q unknown", ErrInvalidCommand, b.JurisdictionID)
	}
	filed, err := fileBill(t, s.engine.progression, b)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("propose bill: %w", err)
	}
	s.commit(ctx, t.c, t.result)
	return filed, nil
}

func defaultJurisdiction(c *campaign.Campaign, level bill.Level) string {
	if c.Politicians != nil {
		if st, ok := c.Politicians.State(c.PlayerID); ok && st.Office != nil && st.Office.Level == level {
			return st.Office.JurisdictionID
		}
	}
	if ids := c.JurisdictionIDs(level); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// CastVote answers the player's queued vote on billID.
func (s *Session) CastVote(ctx context.Context, billID string, choice bill.Choice) (bill.Bill, error) {
	if !choice.Valid() {
		return bill.Bill{}, fmt.Errorf("%w: vote choice %q", ErrInvalidCommand, choice)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTick(s.campaign.Clone(), s.campaign.CurrentDate)
	b, ok := t.c.FindBill(billID)
	if !ok {
		return bill.Bill{}, fmt.Errorf("%w: %s", ErrUnknownBill, billID)
	}
	idx := -1
	for i, q := range t.c.VoteQueue {
		if q.BillID == billID && q.VoterID == t.c.PlayerID && q.Stage == b.CurrentStage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return bill.Bill{}, fmt.Errorf("%w: %s on %s", ErrNoQueuedVote, t.c.PlayerID, billID)
	}
	q := t.c.VoteQueue[idx]
	q.Choice = choice
	t.c.VoteQueue = append(t.c.VoteQueue[:idx:idx], t.c.VoteQueue[idx+1:]...)

	b = b.Clone()
	if b.VotesCast == nil {
		b.VotesCast = map[string]bill.Choice{}
	}
	b.VotesCast[t.c.PlayerID] = choice
	t.c.ReplaceBill(b)
	t.emit(events.New(events.EventTypeVoteCast, t.today, t.c.PlayerID, b.ID,
		fmt.Sprintf("%s voted %s on %s", t.c.PlayerID, choice, b.Name), q))
	s.commit(ctx, t.c, t.result)
	return b, nil
}

// ResolveElection decides the pending election and unblocks ticks.
func (s *Session) ResolveElection(ctx context.Context, id string) (campaign.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTick(s.campaign.Clone(), s.campaign.CurrentDate)
	el, err := s.engine.elections.Resolve(t, id)
	if err != nil {
		return campaign.Election{}, err
	}
	s.commit(ctx, t.c, t.result)
	return el, nil
}

// AssignStaffTask delegates a task of kind to the player's staff for one
// action point.
func (s *Session) AssignStaffTask(ctx context.Context, kind string) (campaign.StaffTask, error) {
	tmpl, ok := StaffTaskKinds[kind]
	if !ok {
		return campaign.StaffTask{}, fmt.Errorf("%w: staff task %q", ErrInvalidCommand, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.campaign.Clone()
	if err := spendActionPoint(c, c.PlayerID); err != nil {
		return campaign.StaffTask{}, err
	}
	task := campaign.StaffTask{
		ID:             events.NewID(),
		PoliticianID:   c.PlayerID,
		Kind:           kind,
		Description:    tmpl.Description,
		DaysRemaining:  tmpl.Days,
		CapitalEffect:  tmpl.CapitalEffect,
		ApprovalEffect: tmpl.ApprovalEffect,
	}
	c.StaffTasks = append(c.StaffTasks, task)
	s.commit(ctx, c, nil)
	return task, nil
}

func spendActionPoint(c *campaign.Campaign, id string) error {
	if c.Politicians == nil {
		return ErrNoActionPoints
	}
	st, ok := c.Politicians.State(id)
	if !ok || st.ActionPoints <= 0 {
		return ErrNoActionPoints
	}
	st.ActionPoints--
	c.Politicians.SetState(id, st)
	return nil
}

// commit swaps in c, records effects and autosaves. Called with s.mu held.
func (s *Session) commit(ctx context.Context, c *campaign.Campaign, res *TickResult) {
	s.campaign = c
	if res == nil {
		res = &TickResult{Date: c.CurrentDate}
	}
	s.record(res.Effects)
	s.save(ctx)
	s.notify(res)
}

func (s *Session) record(effects []events.GameEvent) {
	if len(effects) == 0 {
		return
	}
	for i := range effects {
		if effects[i].CampaignID == "" {
			effects[i].CampaignID = s.campaign.ID
		}
	}
	if err := s.log.Append(effects...); err != nil {
		s.logger.Error("event log write failed", "error", err)
	}
}

func (s *Session) save(ctx context.Context) {
	if s.saver == nil {
		return
	}
	if err := s.saver.SaveCampaign(ctx, s.campaign); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("autosave failed", "campaign", s.campaign.ID, "error", err)
	}
}

func (s *Session) notify(res *TickResult) {
	for _, fn := range s.observers {
		fn(s.campaign, res)
	}
}
