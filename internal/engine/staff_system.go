package engine

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// StaffTaskTemplate describes a kind of delegated work.
type StaffTaskTemplate struct {
	Description    string
	Days           int
	CapitalEffect  float64
	ApprovalEffect float64
}

// StaffTaskKinds is the catalog of tasks a politician can delegate.
var StaffTaskKinds = map[string]StaffTaskTemplate{
	"fundraising":   {Description: "Fundraising drive", Days: 7, CapitalEffect: 2},
	"outreach":      {Description: "Constituent outreach", Days: 5, ApprovalEffect: 1.5},
	"research":      {Description: "Policy research", Days: 10, CapitalEffect: 1, ApprovalEffect: 0.5},
	"media":         {Description: "Media tour", Days: 3, ApprovalEffect: 1},
	"coalition_ask": {Description: "Coalition building", Days: 14, CapitalEffect: 3, ApprovalEffect: -0.5},
}

// StaffTaskDonePayload is the data for EventTypeStaffTaskDone.
type StaffTaskDonePayload struct {
	TaskID   string  `json:"task_id"`
	Kind     string  `json:"kind"`
	Capital  float64 `json:"capital"`
	Approval float64 `json:"approval"`
}

// StaffSystem resets daily resources and completes staff tasks.
type StaffSystem struct {
	logger *logger.Logger
}

// NewStaffSystem creates the staff routine.
func NewStaffSystem(log *logger.Logger) *StaffSystem {
	return &StaffSystem{logger: log}
}

// ResetResources refills every politician's action points.
func (ss *StaffSystem) ResetResources(t *tick) {
	store := t.c.Politicians
	if store == nil {
		return
	}
	for _, id := range store.IDs() {
		st, _ := store.State(id)
		if st.ActionPoints == politician.MaxActionPoints {
			continue
		}
		st.ActionPoints = politician.MaxActionPoints
		store.SetState(id, st)
	}
}

// Process counts tasks down and applies those that complete today.
func (ss *StaffSystem) Process(t *tick) {
	var keep = t.c.StaffTasks[:0:0]
	for _, task := range t.c.StaffTasks {
		task.DaysRemaining--
		if task.DaysRemaining > 0 {
			keep = append(keep, task)
			continue
		}
		if t.c.Politicians != nil {
			if st, ok := t.c.Politicians.State(task.PoliticianID); ok {
				st.PoliticalCapital = rules.ClampPercent(st.PoliticalCapital + task.CapitalEffect)
				st.ApprovalRating = rules.ClampPercent(st.ApprovalRating + task.ApprovalEffect)
				t.c.Politicians.SetState(task.PoliticianID, st)
			}
		}
		msg := fmt.Sprintf("%s completed", task.Description)
		t.emit(events.New(events.EventTypeStaffTaskDone, t.today, "SYSTEM_STAFF", task.PoliticianID, msg, StaffTaskDonePayload{
			TaskID:   task.ID,
			Kind:     task.Kind,
			Capital:  task.CapitalEffect,
			Approval: task.ApprovalEffect,
		}))
		if task.PoliticianID == t.c.PlayerID {
			t.notify(task.PoliticianID, msg)
		}
		ss.logger.Event(string(events.EventTypeStaffTaskDone), task.PoliticianID, msg)
	}
	t.c.StaffTasks = keep
}
