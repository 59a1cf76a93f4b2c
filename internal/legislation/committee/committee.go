// Package committee assigns bills to standing committees by keyword
// matching their policy content.
package committee

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed committees.yaml
var defaultCommittees []byte

// Committee is a standing committee.
type Committee struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"jurisdiction"`
	Powers   []string `yaml:"powers" json:"powers"`
	Size     int      `yaml:"size" json:"size"`
}

// Catalog is the ordered committee list plus the fallback id.
type Catalog struct {
	General    string      `yaml:"general"`
	Committees []Committee `yaml:"committees"`
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("committee: decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCommittees)
}

// MustDefault panics if the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks ids, sizes and the fallback.
func (c *Catalog) Validate() error {
	if len(c.Committees) == 0 {
		return errors.New("committee: catalog is empty")
	}
	seen := map[string]bool{}
	for _, cm := range c.Committees {
		if cm.ID == "" {
			return errors.New("committee: id is required")
		}
		if seen[cm.ID] {
			return fmt.Errorf("committee: duplicate id %s", cm.ID)
		}
		if cm.Size <= 0 {
			return fmt.Errorf("committee %s: size must be positive", cm.ID)
		}
		seen[cm.ID] = true
	}
	if !seen[c.General] {
		return fmt.Errorf("committee: general committee %q is not defined", c.General)
	}
	return nil
}

// Get returns a committee by id.
func (c *Catalog) Get(id string) (Committee, bool) {
	for _, cm := range c.Committees {
		if cm.ID == id {
			return cm, true
		}
	}
	return Committee{}, false
}

// Assign picks the committee whose keywords match the most policy ids.
// Ties go to the earlier committee; no match falls back to the general one.
func (c *Catalog) Assign(policyIDs []string) Committee {
	best, bestScore := c.General, 0
	for _, cm := range c.Committees {
		score := 0
		for _, policy := range policyIDs {
			p := strings.ToLower(policy)
			for _, kw := range cm.Keywords {
				if kw != "" && strings.Contains(p, kw) {
					score++
					break
				}
			}
		}
		if score > bestScore {
			best, bestScore = cm.ID, score
		}
	}
	cm, _ := c.Get(best)
	return cm
}
