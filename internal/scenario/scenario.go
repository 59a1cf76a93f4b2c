// Package scenario builds starting campaigns from a YAML description.
package scenario

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
)

//go:embed default.yaml
var defaultScenario []byte

type partyDoc struct {
	ID       string             `yaml:"id"`
	Name     string             `yaml:"name"`
	Ideology map[string]float64 `yaml:"ideology"`
}

type jurisdictionDoc struct {
	ID         string                  `yaml:"id"`
	Name       string                  `yaml:"name"`
	Level      bill.Level              `yaml:"level"`
	Parent     string                  `yaml:"parent"`
	Executive  string                  `yaml:"executive"`
	Chambers   map[politician.Body]int `yaml:"chambers"`
	Seats      map[string]int          `yaml:"seats"`
	Popularity map[string]float64      `yaml:"popularity"`
}

type politicianDoc struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name"`
	Party        string          `yaml:"party"`
	Born         int             `yaml:"born"`
	Player       bool            `yaml:"player"`
	Approval     float64         `yaml:"approval"`
	Capital      float64         `yaml:"capital"`
	Jurisdiction string          `yaml:"jurisdiction"`
	Body         politician.Body `yaml:"body"`
	Title        string          `yaml:"title"`
	Committees   []string        `yaml:"committees"`
}

type candidateDoc struct {
	Politician string  `yaml:"politician"`
	Support    float64 `yaml:"support"`
	Funds      float64 `yaml:"funds"`
	Incumbent  bool    `yaml:"incumbent"`
}

type electionDoc struct {
	ID           string          `yaml:"id"`
	Jurisdiction string          `yaml:"jurisdiction"`
	Office       string          `yaml:"office"`
	Body         politician.Body `yaml:"body"`
	Date         string          `yaml:"date"`
	Candidates   []candidateDoc  `yaml:"candidates"`
}

type billDoc struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Level        bill.Level  `yaml:"level"`
	Jurisdiction string      `yaml:"jurisdiction"`
	Policies     []string    `yaml:"policies"`
	Proposer     string      `yaml:"proposer"`
	Support      float64     `yaml:"support"`
	Legacy       bool        `yaml:"legacy"`
	Status       bill.Status `yaml:"status"`
}

// Document is the YAML form of a scenario.
type Document struct {
	Name          string               `yaml:"name"`
	City          string               `yaml:"city"`
	Regions       []string             `yaml:"regions"`
	Country       string               `yaml:"country"`
	Player        string               `yaml:"player"`
	Parties       []partyDoc           `yaml:"parties"`
	Jurisdictions []jurisdictionDoc    `yaml:"jurisdictions"`
	Politicians   []politicianDoc      `yaml:"politicians"`
	Policies      []bill.Policy        `yaml:"policies"`
	Electorate    map[string]float64   `yaml:"electorate"`
	Coalitions    []campaign.Coalition `yaml:"coalitions"`
	Elections     []electionDoc        `yaml:"elections"`
	Bills         []billDoc            `yaml:"bills"`
}

// Options are the per-run settings layered over a scenario.
type Options struct {
	ID              string
	PoliticalSystem string
	Start           calendar.GameDate
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	return &doc, nil
}

// Default builds the embedded scenario.
func Default(opts Options) (*campaign.Campaign, error) {
	doc, err := Parse(defaultScenario)
	if err != nil {
		return nil, err
	}
	return doc.Build(opts)
}

// Build validates the document and produces a fresh campaign.
func (d *Document) Build(opts Options) (*campaign.Campaign, error) {
	if !opts.Start.Valid() {
		return nil, fmt.Errorf("scenario: invalid start date %s", opts.Start)
	}
	c := &campaign.Campaign{
		ID:                opts.ID,
		Name:              d.Name,
		CurrentDate:       opts.Start,
		PoliticalSystemID: opts.PoliticalSystem,
		PlayerID:          d.Player,
		Politicians:       politician.NewStore(),
		Parties:           map[string]politician.Party{},
		CityID:            d.City,
		RegionIDs:         append([]string(nil), d.Regions...),
		CountryID:         d.Country,
		Jurisdictions:     map[string]campaign.Jurisdiction{},
		Bills:             map[bill.Level][]bill.Bill{},
		PolicyCatalog:     append([]bill.Policy(nil), d.Policies...),
		Electorate:        map[string]float64{},
		Coalitions:        map[string]campaign.Coalition{},
	}
	for axis, v := range d.Electorate {
		c.Electorate[axis] = rules.Clamp(v, -1, 1)
	}
	for _, p := range d.Parties {
		c.Parties[p.ID] = politician.Party{ID: p.ID, Name: p.Name, Ideology: p.Ideology}
	}

	for _, j := range d.Jurisdictions {
		if !j.Level.Valid() {
			return nil, fmt.Errorf("scenario: jurisdiction %s: unknown level %q", j.ID, j.Level)
		}
		for party := range j.Seats {
			if _, ok := c.Parties[party]; !ok {
				return nil, fmt.Errorf("scenario: jurisdiction %s: unknown party %s", j.ID, party)
			}
		}
		c.SetJurisdiction(campaign.Jurisdiction{
			ID:          j.ID,
			Name:        j.Name,
			Level:       j.Level,
			ParentID:    j.Parent,
			ExecutiveID: j.Executive,
			Chambers:    j.Chambers,
			Seats:       j.Seats,
			Popularity:  rules.Renormalize(j.Popularity),
			Stats:       campaign.DefaultStats(),
		})
	}
	if _, ok := c.City(); !ok {
		return nil, fmt.Errorf("scenario: city %q is not a jurisdiction", d.City)
	}

	for _, p := range d.Politicians {
		if _, ok := c.Parties[p.Party]; !ok {
			return nil, fmt.Errorf("scenario: politician %s: unknown party %s", p.ID, p.Party)
		}
		st := politician.State{
			ApprovalRating:   rules.ClampPercent(p.Approval),
			PoliticalCapital: rules.ClampPercent(p.Capital),
			Age:              opts.Start.Year - p.Born,
			ActionPoints:     politician.MaxActionPoints,
		}
		if p.Body != politician.BodyNone {
			j, ok := c.Jurisdictions[p.Jurisdiction]
			if !ok {
				return nil, fmt.Errorf("scenario: politician %s: unknown jurisdiction %s", p.ID, p.Jurisdiction)
			}
			st = st.WithOffice(&politician.Office{
				Level:          j.Level,
				JurisdictionID: j.ID,
				Body:           p.Body,
				Title:          p.Title,
				Committees:     p.Committees,
			})
		}
		c.Politicians.Add(politician.Base{
			ID:        p.ID,
			Name:      p.Name,
			PartyID:   p.Party,
			BirthYear: p.Born,
			IsPlayer:  p.Player,
		}, st)
	}
	if _, ok := c.Politicians.Base(d.Player); !ok {
		return nil, fmt.Errorf("scenario: player %q is not a politician", d.Player)
	}
	for id, j := range c.Jurisdictions {
		if j.ExecutiveID == "" {
			continue
		}
		exec, ok := c.Politicians.Base(j.ExecutiveID)
		if !ok {
			return nil, fmt.Errorf("scenario: jurisdiction %s: unknown executive %s", id, j.ExecutiveID)
		}
		j.ExecutivePartyID = exec.PartyID
		c.Jurisdictions[id] = j
	}

	for _, co := range d.Coalitions {
		co.Satisfaction = rules.ClampPercent(co.Satisfaction)
		co.Mobilization = rules.ClampPercent(co.Mobilization)
		c.Coalitions[co.ID] = co
	}

	for _, e := range d.Elections {
		date, err := calendar.Parse(e.Date)
		if err != nil {
			return nil, fmt.Errorf("scenario: election %s: %w", e.ID, err)
		}
		j, ok := c.Jurisdictions[e.Jurisdiction]
		if !ok {
			return nil, fmt.Errorf("scenario: election %s: unknown jurisdiction %s", e.ID, e.Jurisdiction)
		}
		el := campaign.Election{
			ID:             e.ID,
			Level:          j.Level,
			JurisdictionID: j.ID,
			Office:         e.Office,
			Body:           e.Body,
			Date:           date,
		}
		for _, cand := range e.Candidates {
			base, ok := c.Politicians.Base(cand.Politician)
			if !ok {
				return nil, fmt.Errorf("scenario: election %s: unknown candidate %s", e.ID, cand.Politician)
			}
			el.Candidates = append(el.Candidates, campaign.Candidate{
				PoliticianID: base.ID,
				PartyID:      base.PartyID,
				Support:      cand.Support,
				Funds:        cand.Funds,
				Incumbent:    cand.Incumbent,
			})
		}
		c.Elections = append(c.Elections, el)
	}

	for _, b := range d.Bills {
		if !b.Level.Valid() {
			return nil, fmt.Errorf("scenario: bill %s: unknown level %q", b.ID, b.Level)
		}
		status := b.Status
		if status == "" {
			status = bill.StatusPendingVote
		}
		c.AddBill(bill.Bill{
			ID:             b.ID,
			Name:           b.Name,
			Level:          b.Level,
			JurisdictionID: b.Jurisdiction,
			Policies:       b.Policies,
			ProposerID:     b.Proposer,
			Source:         bill.SourceLegislator,
			PublicSupport:  b.Support,
			Status:         status,
			ProposedOn:     opts.Start,
			Legacy:         b.Legacy,
			NextCheck:      opts.Start.AddDays(7),
		})
	}
	return c, nil
}
