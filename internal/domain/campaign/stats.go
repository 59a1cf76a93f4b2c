package campaign

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Well-known statistic paths.
const (
	StatUnemployment  = "economy.unemployment"
	StatGDPGrowth     = "economy.gdpGrowth"
	StatCrime         = "society.crimeRate"
	StatPoverty       = "society.povertyRate"
	StatBudgetBalance = "budget.balance"
	StatBudgetRevenue = "budget.revenue"
	StatBudgetSpend   = "budget.spending"
	StatMood          = "mood.index"
)

// Stats is a jurisdiction's statistics as a JSON document addressed by
// dotted paths ("economy.unemployment"). Values are immutable: With returns
// a new document.
type Stats string

// DefaultStats is a neutral starting point.
func DefaultStats() Stats {
	return Stats(`{"economy":{"unemployment":5.5,"gdpGrowth":2.0},"society":{"crimeRate":30,"povertyRate":12},"budget":{"balance":0,"revenue":1000,"spending":1000},"mood":{"index":55}}`)
}

// Float reads a numeric path.
func (s Stats) Float(path string) (float64, bool) {
	r := gjson.Get(string(s), path)
	if !r.Exists() || r.Type != gjson.Number {
		return 0, false
	}
	return r.Float(), true
}

// FloatOr reads a numeric path with a default.
func (s Stats) FloatOr(path string, def float64) float64 {
	if v, ok := s.Float(path); ok {
		return v
	}
	return def
}

// With returns a document with path set to v. Non-finite values are rejected.
func (s Stats) With(path string, v float64) (Stats, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s, fmt.Errorf("stat %s: non-finite value", path)
	}
	doc := string(s)
	if doc == "" {
		doc = "{}"
	}
	out, err := sjson.Set(doc, path, v)
	if err != nil {
		return s, fmt.Errorf("stat %s: %w", path, err)
	}
	return Stats(out), nil
}

// Delta is an additive change to a set of paths.
type Delta map[string]float64

// Apply adds every delta entry, creating missing paths.
func (s Stats) Apply(d Delta) (Stats, error) {
	out := s
	for _, path := range sortedKeys(d) {
		next, err := out.With(path, out.FloatOr(path, 0)+d[path])
		if err != nil {
			return s, err
		}
		out = next
	}
	return out, nil
}

// Valid reports a parseable JSON object.
func (s Stats) Valid() bool {
	return gjson.Valid(string(s)) && gjson.Parse(string(s)).IsObject()
}
