package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/legislation/progression"
	"github.com/MRamiBalles/Legislatura/internal/legislation/workflow"
)

// Seat is one ballot in a body: a named politician or an unnamed seat held
// by a party.
type Seat struct {
	VoterID string
	PartyID string
	Named   bool
}

// Chamber is the decided body of a stage with every seat filled.
type Chamber struct {
	Body  progression.Body
	Seats []Seat
}

// Has reports whether voterID sits in the chamber.
func (ch Chamber) Has(voterID string) bool {
	for _, s := range ch.Seats {
		if s.VoterID == voterID {
			return true
		}
	}
	return false
}

// composeChamber resolves who decides the bill's current stage.
func composeChamber(c *campaign.Campaign, b bill.Bill, def workflow.StageDefinition) Chamber {
	j, ok := c.Jurisdictions[b.JurisdictionID]
	if !ok {
		return Chamber{}
	}
	store := c.Politicians

	switch def.Kind {
	case bill.KindExecutive:
		ch := Chamber{Body: progression.Body{Chamber: politician.BodyExecutive, Size: 1, ExecutiveID: j.ExecutiveID}}
		if j.ExecutiveID != "" {
			ch.Body.Members = []string{j.ExecutiveID}
			ch.Seats = []Seat{{VoterID: j.ExecutiveID, PartyID: j.ExecutivePartyID, Named: true}}
		}
		return ch

	case bill.KindCommittee:
		d, _ := b.Detail.(*bill.CommitteeDetail)
		size, committeeID := 0, ""
		if d != nil {
			size, committeeID = d.Size, d.CommitteeID
		}
		var named []string
		if store != nil && committeeID != "" {
			named = store.CommitteeMembers(j.ID, committeeID)
		}
		return fill(c, j, fmt.Sprintf("%s/committee/%s", j.ID, committeeID), politician.BodyNone, size, named)
	}

	body := politician.Body(def.Chamber)
	if def.Kind == bill.KindCouncil && body == politician.BodyNone {
		body = politician.BodyCouncil
	}
	if body == politician.BodyNone {
		return Chamber{}
	}
	size := j.Chambers[body]
	if size == 0 && body == mainChamber(j.Level) {
		size = j.TotalSeats()
	}
	var named []string
	if store != nil {
		named = store.Members(j.ID, body)
	}
	return fill(c, j, fmt.Sprintf("%s/%s", j.ID, body), body, size, named)
}

func mainChamber(level bill.Level) politician.Body {
	if level == bill.LevelCity {
		return politician.BodyCouncil
	}
	return politician.BodyLower
}

// fill apportions size seats by the jurisdiction's party seats and hands
// each party's share to its named members first.
func fill(c *campaign.Campaign, j campaign.Jurisdiction, prefix string, body politician.Body, size int, named []string) Chamber {
	if size < len(named) {
		size = len(named)
	}
	ch := Chamber{Body: progression.Body{Chamber: body, Size: size, Members: append([]string(nil), named...)}}
	byParty := map[string][]string{}
	for _, id := range named {
		party := ""
		if c.Politicians != nil {
			if base, ok := c.Politicians.Base(id); ok {
				party = base.PartyID
			}
		}
		byParty[party] = append(byParty[party], id)
	}
	shares := apportion(size-len(named), j.Seats, byParty)
	for _, party := range sortedParties(byParty, shares) {
		for _, id := range byParty[party] {
			ch.Seats = append(ch.Seats, Seat{VoterID: id, PartyID: party, Named: true})
		}
		for i := 0; i < shares[party]; i++ {
			ch.Seats = append(ch.Seats, Seat{VoterID: fmt.Sprintf("%s/%s#%d", prefix, party, i+1), PartyID: party})
		}
	}
	return ch
}

// apportion distributes the unnamed seats so that each party's total
// (named plus unnamed) tracks its seat share, by largest remainder.
func apportion(open int, seats map[string]int, named map[string][]string) map[string]int {
	out := map[string]int{}
	if open <= 0 {
		return out
	}
	total := 0
	for _, n := range seats {
		total += n
	}
	if total == 0 {
		return out
	}
	size := open
	for _, ids := range named {
		size += len(ids)
	}

	type rem struct {
		party string
		frac  float64
	}
	var rems []rem
	assigned := 0
	for _, party := range sortedKeys(seats) {
		quota := float64(size) * float64(seats[party]) / float64(total)
		want := int(math.Floor(quota)) - len(named[party])
		if want < 0 {
			want = 0
		}
		out[party] = want
		assigned += want
		rems = append(rems, rem{party, quota - math.Floor(quota)})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < open && len(rems) > 0; i++ {
		out[rems[i%len(rems)].party]++
		assigned++
	}
	for assigned > open {
		// Named members overflowed the quotas; trim the largest shares.
		big := ""
		for _, party := range sortedKeys(out) {
			if big == "" || out[party] > out[big] {
				big = party
			}
		}
		out[big]--
		assigned--
	}
	return out
}

func sortedParties(named map[string][]string, shares map[string]int) []string {
	set := map[string]bool{}
	for p := range named {
		set[p] = true
	}
	for p := range shares {
		set[p] = true
	}
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
