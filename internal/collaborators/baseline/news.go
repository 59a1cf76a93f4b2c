package baseline

import (
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// News writes one-line articles from events.
type News struct{}

// Article implements collaborators.NewsProcessor.
func (News) Article(ev events.WorldEvent) (events.NewsItem, error) {
	t := events.NewsWorld
	if ev.Scheduled {
		t = events.NewsAdmin
	}
	return events.NewsItem{
		ID:             events.NewID(),
		Headline:       ev.Title,
		Body:           ev.Description,
		Type:           t,
		Scope:          ev.Scope,
		JurisdictionID: ev.JurisdictionID,
		Severity:       ev.Severity,
		Date:           ev.Date,
		RelatedID:      ev.ID,
	}, nil
}

// FollowUp implements collaborators.NewsProcessor.
func (News) FollowUp(ev events.WorldEvent) (events.NewsItem, error) {
	return events.NewsItem{
		ID:             events.NewID(),
		Headline:       "Officials under pressure after: " + ev.Title,
		Body:           "Residents demand a response from local leaders.",
		Type:           events.NewsPolitics,
		Scope:          ev.Scope,
		JurisdictionID: ev.JurisdictionID,
		Severity:       ev.Severity,
		Date:           ev.Date,
		RelatedID:      ev.ID,
	}, nil
}
