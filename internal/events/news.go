package events

import (
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// NewsType groups news items for the feed.
type NewsType string

const (
	NewsPolitics    NewsType = "politics"
	NewsLegislation NewsType = "legislation"
	NewsEconomy     NewsType = "economy"
	NewsWorld       NewsType = "world"
	NewsPoll        NewsType = "poll"
	NewsElection    NewsType = "election"
	NewsAdmin       NewsType = "administrative"
)

// NewsItem is a headline shown to the player.
type NewsItem struct {
	ID             string            `json:"id"`
	Headline       string            `json:"headline"`
	Body           string            `json:"body,omitempty"`
	Type           NewsType          `json:"type"`
	Scope          string            `json:"scope"` // city | state | national | jurisdiction id
	JurisdictionID string            `json:"jurisdictionId,omitempty"`
	Severity       Severity          `json:"severity,omitempty"`
	Date           calendar.GameDate `json:"date"`
	RelatedID      string            `json:"relatedId,omitempty"`
}

// NewsKey identifies duplicates.
type NewsKey struct {
	Headline string
	Type     NewsType
	Scope    string
}

// Key returns the de-duplication key (headline, type, scope).
func (n NewsItem) Key() NewsKey {
	return NewsKey{Headline: n.Headline, Type: n.Type, Scope: n.Scope}
}

// Dedupe keeps the first item per key, preserving order.
func Dedupe(items []NewsItem) []NewsItem {
	if len(items) == 0 {
		return items
	}
	seen := make(map[NewsKey]struct{}, len(items))
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		out = append(out, it)
	}
	return out
}
