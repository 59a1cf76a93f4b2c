package baseline

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Author picks the catalog policy closest to the actor's ideology that is not
// already before the same jurisdiction.
type Author struct {
	rng random.Source
}

// NewAuthor builds the baseline bill author.
func NewAuthor(rng random.Source) *Author {
	return &Author{rng: rng}
}

// Author implements collaborators.BillAuthor.
func (a *Author) Author(in collaborators.AuthorInput) (*bill.Bill, error) {
	pending := map[string]bool{}
	for _, b := range in.Existing {
		if b.JurisdictionID != in.JurisdictionID || b.Terminal() {
			continue
		}
		for _, id := range b.Policies {
			pending[id] = true
		}
	}

	var best *bill.Policy
	bestScore := -1e9
	for i := range in.Catalog {
		p := in.Catalog[i]
		if pending[p.ID] {
			continue
		}
		if in.Actor.Focus != "" && p.Axis != in.Actor.Focus {
			continue
		}
		score := -abs(in.Actor.Ideology[p.Axis]-p.Stance) + random.Jitter(a.rng, 0.25)
		if score > bestScore {
			best, bestScore = &in.Catalog[i], score
		}
	}
	if best == nil {
		return nil, nil
	}
	return &bill.Bill{
		ID:             events.NewID(),
		Name:           fmt.Sprintf("%s Act", best.Name),
		Level:          in.Level,
		JurisdictionID: in.JurisdictionID,
		Policies:       []string{best.ID},
		ProposerID:     in.Actor.ID,
		Source:         in.Actor.Source,
		PublicSupport:  best.Support,
		ProposedOn:     in.Date,
	}, nil
}
