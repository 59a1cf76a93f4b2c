package network

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// ReplayEvent is an event as shown in the history viewer.
type ReplayEvent struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	Date      calendar.GameDate `json:"date"`
	Type      events.EventType  `json:"type"`
	ActorID   string            `json:"actor_id"`
	TargetID  string            `json:"target_id,omitempty"`
	Summary   string            `json:"summary"`
	Impact    events.Impact     `json:"impact"`
	Payload   interface{}       `json:"payload,omitempty"`
}

// ReplayResponse is the body of GET /api/events.
type ReplayResponse struct {
	CampaignID  string        `json:"campaign_id"`
	TotalEvents int           `json:"total_events"`
	Next        int           `json:"next"` // offset to poll from
	GeneratedAt string        `json:"generated_at"`
	Events      []ReplayEvent `json:"events"`
}

// handleEvents replays the effects log.
// GET /api/events?type=BILL_RESOLVED&date=2025-03-01&actor=p_player&since=120&details=true
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	log := a.session.Events()

	var evs []events.GameEvent
	switch {
	case q.Get("since") != "":
		n, err := strconv.Atoi(q.Get("since"))
		if err != nil || n < 0 {
			a.jsonError(w, "since must be a non-negative offset", http.StatusBadRequest)
			return
		}
		evs = log.Since(n)
	case q.Get("date") != "":
		d, err := calendar.Parse(q.Get("date"))
		if err != nil {
			a.jsonError(w, "invalid date", http.StatusBadRequest)
			return
		}
		evs = log.GetByDate(d)
	case q.Get("actor") != "":
		evs = log.GetByActor(q.Get("actor"))
	default:
		evs = log.Replay()
	}

	kind := events.EventType(q.Get("type"))
	details := q.Get("details") == "true"
	playerID := a.session.Campaign().PlayerID

	resp := ReplayResponse{
		CampaignID:  a.campaignID(),
		TotalEvents: log.Len(),
		Next:        log.Len(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Events:      []ReplayEvent{},
	}
	for _, e := range evs {
		if kind != "" && e.Type != kind {
			continue
		}
		resp.Events = append(resp.Events, toReplayEvent(e, playerID, details))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func toReplayEvent(e events.GameEvent, playerID string, details bool) ReplayEvent {
	impact, _ := events.Classify(e, playerID)
	out := ReplayEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Date:      e.Date,
		Type:      e.Type,
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Summary:   e.Message,
		Impact:    impact,
	}
	if details {
		out.Payload = e.Payload
	}
	return out
}
