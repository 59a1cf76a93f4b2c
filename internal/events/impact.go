package events

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Impact classifies an event from the player's point of view.
type Impact string

const (
	ImpactPositive Impact = "POSITIVE"
	ImpactNegative Impact = "NEGATIVE"
	ImpactNeutral  Impact = "NEUTRAL"
)

// Classify grades e for playerID. notable is false for routine bookkeeping
// such as day and month markers.
func Classify(e GameEvent, playerID string) (impact Impact, notable bool) {
	switch e.Type {
	case EventTypeBillResolved:
		doc := payloadJSON(e.Payload)
		if gjson.GetBytes(doc, "proposerId").String() != playerID {
			return ImpactNeutral, true
		}
		if gjson.GetBytes(doc, "status").String() == "passed" {
			return ImpactPositive, true
		}
		return ImpactNegative, true
	case EventTypeElectionResult:
		if gjson.GetBytes(payloadJSON(e.Payload), "winner_id").String() == playerID {
			return ImpactPositive, true
		}
		return ImpactNeutral, true
	case EventTypeStaffTaskDone:
		if e.TargetID == playerID {
			return ImpactPositive, true
		}
	case EventTypeVoteRequested, EventTypeBillProposed, EventTypeVoteCast:
		if e.TargetID == playerID || e.ActorID == playerID {
			return ImpactNeutral, true
		}
	case EventTypeVoteAutoResolve, EventTypePhaseError:
		return ImpactNegative, true
	case EventTypeWorldEvent:
		if Severity(gjson.GetBytes(payloadJSON(e.Payload), "severity").String()).High() {
			return ImpactNegative, true
		}
		return ImpactNeutral, true
	}
	return ImpactNeutral, false
}

// payloadJSON returns the payload as JSON whether it came from storage or
// is still an in-memory value.
func payloadJSON(payload interface{}) []byte {
	switch p := payload.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return p
	case []byte:
		return p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil
		}
		return b
	}
}
