// Package workflow holds the static catalog of legislative procedures: per
// political system and per level, an ordered list of stages with their
// requirements and duration bands.
package workflow

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrUnknownSystem is returned for a political system with no workflow.
	ErrUnknownSystem = errors.New("workflow: unknown political system")
	// ErrUnknownLevel is returned for a level outside city/state/national.
	ErrUnknownLevel = errors.New("workflow: unknown level")
	// ErrUnknownStage is returned when a step is not part of a workflow.
	ErrUnknownStage = errors.New("workflow: unknown stage")
)

// Requirement names a precondition checked before a stage may complete.
type Requirement string

const (
	RequireProposer          Requirement = "proposer"
	RequirePolicies          Requirement = "policies"
	RequireCommitteeAssigned Requirement = "committee_assigned"
	RequireQuorum            Requirement = "quorum"
)

// Known reports a requirement the progression engine can evaluate.
func (r Requirement) Known() bool {
	switch r {
	case RequireProposer, RequirePolicies, RequireCommitteeAssigned, RequireQuorum:
		return true
	}
	return false
}

// Duration is an inclusive band of days.
type Duration struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (d Duration) validate() error {
	if d.Min < 0 || d.Max < d.Min {
		return fmt.Errorf("invalid duration band [%d,%d]", d.Min, d.Max)
	}
	return nil
}

// IsZero reports an unset band.
func (d Duration) IsZero() bool {
	return d.Min == 0 && d.Max == 0
}

// StageDefinition is one step of a workflow.
type StageDefinition struct {
	Step         string          `yaml:"step" json:"step"`
	Kind         bill.StageKind  `yaml:"kind" json:"kind"`
	Chamber      politician.Body `yaml:"chamber,omitempty" json:"chamber,omitempty"`
	Requirements []Requirement   `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Duration     Duration        `yaml:"duration" json:"duration"`
	// Vote is the band used once, on entry, to fix the vote or decision date
	// of a vote-bearing stage.
	Vote Duration `yaml:"vote,omitempty" json:"vote,omitempty"`
}

// Validate checks a single stage definition.
func (s StageDefinition) Validate() error {
	if s.Step == "" {
		return errors.New("step is required")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("stage %s: unknown kind %q", s.Step, s.Kind)
	}
	if err := s.Duration.validate(); err != nil {
		return fmt.Errorf("stage %s: %w", s.Step, err)
	}
	if s.Kind.VoteBearing() {
		if s.Vote.IsZero() {
			return fmt.Errorf("stage %s: vote band is required", s.Step)
		}
		if err := s.Vote.validate(); err != nil {
			return fmt.Errorf("stage %s vote: %w", s.Step, err)
		}
	} else if !s.Vote.IsZero() {
		return fmt.Errorf("stage %s: vote band on a %s stage", s.Step, s.Kind)
	}
	if (s.Kind == bill.KindFloor || s.Kind == bill.KindCouncil) && s.Chamber == politician.BodyNone {
		return fmt.Errorf("stage %s: chamber is required", s.Step)
	}
	for _, req := range s.Requirements {
		if !req.Known() {
			return fmt.Errorf("stage %s: unknown requirement %q", s.Step, req)
		}
	}
	return nil
}

// Status is the bill status while it sits in this stage, before any vote
// date is reached.
func (s StageDefinition) Status() bill.Status {
	switch s.Kind {
	case bill.KindCommittee:
		return bill.StatusInCommittee
	case bill.KindCouncil:
		return bill.StatusPendingVote
	case bill.KindExecutive:
		return bill.StatusAwaitingSignature
	case bill.KindFloor:
		return bill.StatusFloorConsideration
	}
	if s.Step == "committee_assignment" {
		return bill.StatusInCommittee
	}
	return bill.StatusFloorConsideration
}

// Workflow is an ordered list of stages.
type Workflow struct {
	ID     string            `yaml:"id" json:"id"`
	Name   string            `yaml:"name" json:"name"`
	Stages []StageDefinition `yaml:"stages" json:"stages"`
}

// Validate ensures the workflow is self-consistent.
func (w Workflow) Validate() error {
	if w.ID == "" {
		return errors.New("workflow: id is required")
	}
	if len(w.Stages) == 0 {
		return fmt.Errorf("workflow %s: at least one stage is required", w.ID)
	}
	seen := map[string]struct{}{}
	for idx, s := range w.Stages {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("workflow %s stage[%d]: %w", w.ID, idx, err)
		}
		if _, dup := seen[s.Step]; dup {
			return fmt.Errorf("workflow %s: duplicate stage %s", w.ID, s.Step)
		}
		seen[s.Step] = struct{}{}
		if s.Kind == bill.KindExecutive && idx != len(w.Stages)-1 {
			return fmt.Errorf("workflow %s: executive stage %s must be last", w.ID, s.Step)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (w Workflow) Clone() Workflow {
	out := w
	out.Stages = make([]StageDefinition, len(w.Stages))
	for i, s := range w.Stages {
		s.Requirements = append([]Requirement(nil), s.Requirements...)
		out.Stages[i] = s
	}
	return out
}

// Len is the number of stages.
func (w Workflow) Len() int { return len(w.Stages) }

// First returns stage 1.
func (w Workflow) First() StageDefinition { return w.Stages[0] }

// Index returns the position of a step or -1.
func (w Workflow) Index(step string) int {
	for i, s := range w.Stages {
		if s.Step == step {
			return i
		}
	}
	return -1
}

// Stage resolves a step.
func (w Workflow) Stage(step string) (StageDefinition, error) {
	if i := w.Index(step); i >= 0 {
		return w.Stages[i], nil
	}
	return StageDefinition{}, fmt.Errorf("%w: %s in %s", ErrUnknownStage, step, w.ID)
}

// After returns the stage following step; ok is false at the end.
func (w Workflow) After(step string) (StageDefinition, bool, error) {
	i := w.Index(step)
	if i < 0 {
		return StageDefinition{}, false, fmt.Errorf("%w: %s in %s", ErrUnknownStage, step, w.ID)
	}
	if i+1 >= len(w.Stages) {
		return StageDefinition{}, false, nil
	}
	return w.Stages[i+1], true, nil
}

// Catalog maps (political system, level) to a workflow.
type Catalog struct {
	Council     Workflow            `yaml:"council"`
	Legislature Workflow            `yaml:"legislature"`
	Systems     map[string]Workflow `yaml:"systems"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("workflow: catalog payload is empty")
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("workflow: decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is Default for package initialization paths.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks every workflow.
func (c *Catalog) Validate() error {
	if err := c.Council.Validate(); err != nil {
		return fmt.Errorf("council: %w", err)
	}
	if err := c.Legislature.Validate(); err != nil {
		return fmt.Errorf("legislature: %w", err)
	}
	if len(c.Systems) == 0 {
		return errors.New("workflow: at least one political system is required")
	}
	for id, w := range c.Systems {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("system %s: %w", id, err)
		}
	}
	return nil
}

// SystemIDs lists the political systems in the catalog.
func (c *Catalog) SystemIDs() []string {
	ids := make([]string, 0, len(c.Systems))
	for id := range c.Systems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup resolves the workflow for a bill level. The system only matters at
// the national level, but it must always be a known system.
func (c *Catalog) Lookup(systemID string, level bill.Level) (Workflow, error) {
	national, ok := c.Systems[systemID]
	if !ok {
		return Workflow{}, fmt.Errorf("%w: %q", ErrUnknownSystem, systemID)
	}
	switch level {
	case bill.LevelCity:
		return c.Council, nil
	case bill.LevelState:
		return c.Legislature, nil
	case bill.LevelNational:
		return national, nil
	}
	return Workflow{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}
