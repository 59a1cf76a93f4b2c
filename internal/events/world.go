package events

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// Severity grades world events.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// High reports severities that trigger follow-up coverage.
func (s Severity) High() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// EffectOp selects how a stat effect combines with the current value.
type EffectOp string

const (
	OpAdd        EffectOp = "add"
	OpMultiply   EffectOp = "multiply"
	OpPercentage EffectOp = "percentage"
)

// Apply combines current with value under the op.
func (op EffectOp) Apply(current, value float64) (float64, error) {
	switch op {
	case OpAdd, "":
		return current + value, nil
	case OpMultiply:
		return current * value, nil
	case OpPercentage:
		return current * (1 + value/100), nil
	}
	return current, fmt.Errorf("events: unknown effect op %q", op)
}

// StatEffect changes one dotted statistic path ("economy.unemployment").
type StatEffect struct {
	Path  string   `json:"path" yaml:"path"`
	Op    EffectOp `json:"op" yaml:"op"`
	Value float64  `json:"value" yaml:"value"`
}

// CoalitionEvent is a sub-event forwarded to the coalition engine.
type CoalitionEvent struct {
	CoalitionID       string  `json:"coalitionId" yaml:"coalition"`
	SatisfactionDelta float64 `json:"satisfactionDelta" yaml:"satisfaction"`
	MobilizationDelta float64 `json:"mobilizationDelta" yaml:"mobilization"`
}

// WorldEvent is a random or scheduled happening with declared effects.
type WorldEvent struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	Severity        Severity          `json:"severity"`
	Scope           string            `json:"scope"`
	JurisdictionID  string            `json:"jurisdictionId"`
	Date            calendar.GameDate `json:"date"`
	Effects         []StatEffect      `json:"effects,omitempty"`
	CoalitionEvents []CoalitionEvent  `json:"coalitionEvents,omitempty"`
	Scheduled       bool              `json:"scheduled,omitempty"`
}
