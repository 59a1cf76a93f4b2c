package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

func TestClassify(t *testing.T) {
	d := calendar.MustNew(2025, 5, 1)
	cases := []struct {
		name    string
		event   GameEvent
		impact  Impact
		notable bool
	}{
		{"own bill passed", New(EventTypeBillResolved, d, "system", "b1", "", map[string]string{"proposerId": "p1", "status": "passed"}), ImpactPositive, true},
		{"own bill failed from storage", New(EventTypeBillResolved, d, "system", "b1", "", json.RawMessage(`{"proposerId":"p1","status":"failed"}`)), ImpactNegative, true},
		{"rival bill", New(EventTypeBillResolved, d, "system", "b2", "", map[string]string{"proposerId": "p9", "status": "passed"}), ImpactNeutral, true},
		{"won election", New(EventTypeElectionResult, d, "system", "", "", []byte(`{"winner_id":"p1"}`)), ImpactPositive, true},
		{"lost election", New(EventTypeElectionResult, d, "system", "", "", map[string]string{"winner_id": "p2"}), ImpactNeutral, true},
		{"staff task for player", New(EventTypeStaffTaskDone, d, "staff", "p1", "", nil), ImpactPositive, true},
		{"staff task for someone else", New(EventTypeStaffTaskDone, d, "staff", "p2", "", nil), ImpactNeutral, false},
		{"vote requested", New(EventTypeVoteRequested, d, "system", "p1", "", nil), ImpactNeutral, true},
		{"auto resolved vote", New(EventTypeVoteAutoResolve, d, "system", "p1", "", nil), ImpactNegative, true},
		{"critical world event", New(EventTypeWorldEvent, d, "world", "", "", WorldEvent{Severity: SeverityCritical}), ImpactNegative, true},
		{"minor world event", New(EventTypeWorldEvent, d, "world", "", "", WorldEvent{Severity: SeverityLow}), ImpactNeutral, true},
		{"day marker", New(EventTypeDayAdvanced, d, "system", "", "", nil), ImpactNeutral, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			impact, notable := Classify(tc.event, "p1")
			assert.Equal(t, tc.impact, impact)
			assert.Equal(t, tc.notable, notable)
		})
	}
}
