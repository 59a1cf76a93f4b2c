// Package main - simulate
// Headless simulator: fast-forwards a fresh campaign and prints what happened.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
	"github.com/MRamiBalles/Legislatura/internal/scenario"
)

// Summary is the outcome of a run.
type Summary struct {
	Start        calendar.GameDate `json:"start"`
	End          calendar.GameDate `json:"end"`
	Days         int               `json:"days"`
	Seed         int64             `json:"seed"`
	BillsPassed  []string          `json:"bills_passed"`
	BillsFailed  []string          `json:"bills_failed"`
	NewBills     int               `json:"new_bills"`
	News         int               `json:"news"`
	PhaseErrors  int               `json:"phase_errors"`
	Elections    []string          `json:"elections"`
	Approval     float64           `json:"approval"`
	Capital      float64           `json:"capital"`
	TopHeadlines []string          `json:"top_headlines"`
}

func main() {
	days := flag.Int("days", 365, "Days to simulate")
	seed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	startStr := flag.String("start", "2025-01-01", "Start date YYYY-MM-DD")
	system := flag.String("system", "presidential", "Political system id")
	resolve := flag.Bool("resolve-elections", true, "Resolve election nights and keep going")
	jsonOut := flag.String("json", "", "Write the summary as JSON to this file")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	log := logger.New(logger.Options{Level: *logLevel})
	start, err := calendar.Parse(*startStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *seed == 0 {
		if *seed, err = random.NewSeed(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := simulate(ctx, log, *seed, start, *system, *days, *resolve)
	if err != nil {
		fmt.Fprintln(os.Stderr, "simulation stopped:", err)
	}
	printSummary(summary)

	if *jsonOut != "" {
		data, _ := json.MarshalIndent(summary, "", "  ")
		if werr := os.WriteFile(*jsonOut, data, 0o644); werr != nil {
			fmt.Fprintln(os.Stderr, werr)
			os.Exit(1)
		}
		fmt.Println("\nSummary saved to", *jsonOut)
	}
	if err != nil {
		os.Exit(1)
	}
}

func simulate(ctx context.Context, log *logger.Logger, seed int64, start calendar.GameDate, system string, days int, resolve bool) (Summary, error) {
	summary := Summary{Start: start, End: start, Seed: seed}
	c, err := scenario.Default(scenario.Options{ID: "simulation", PoliticalSystem: system, Start: start})
	if err != nil {
		return summary, err
	}
	eng := engine.New(log, engine.WithRandom(random.NewSeeded(seed)))
	session := engine.NewSession(eng, c, log)

	var results []*engine.TickResult
	target := start.AddDays(days)
	for {
		batch, err := session.AdvanceUntil(ctx, func(c *campaign.Campaign) bool {
			return c.CurrentDate.OnOrAfter(target)
		})
		results = append(results, batch...)
		if err != nil {
			fill(&summary, session.Campaign(), results)
			return summary, err
		}
		cur := session.Campaign()
		if cur.PendingElectionID == "" || !resolve {
			break
		}
		el, err := session.ResolveElection(ctx, cur.PendingElectionID)
		if err != nil {
			fill(&summary, cur, results)
			return summary, err
		}
		summary.Elections = append(summary.Elections, fmt.Sprintf("%s: %s won on %s", el.ID, el.WinnerID, el.Date))
		if cur.CurrentDate.OnOrAfter(target) {
			break
		}
	}
	fill(&summary, session.Campaign(), results)
	return summary, nil
}

func fill(s *Summary, c *campaign.Campaign, results []*engine.TickResult) {
	s.End = c.CurrentDate
	s.Days = s.Start.DaysUntil(s.End)
	headlines := map[string]bool{}
	for _, res := range results {
		s.News += len(res.NewsItems)
		s.NewBills += len(res.NewBills)
		s.PhaseErrors += len(res.Errors)
		for _, u := range res.BillUpdates {
			switch u.To {
			case bill.StatusPassed:
				s.BillsPassed = append(s.BillsPassed, u.BillID)
			case bill.StatusFailed:
				s.BillsFailed = append(s.BillsFailed, u.BillID)
			}
		}
		for _, n := range res.NewsItems {
			if n.Severity.High() {
				headlines[n.Date.String()+" "+n.Headline] = true
			}
		}
	}
	for h := range headlines {
		s.TopHeadlines = append(s.TopHeadlines, h)
	}
	sort.Strings(s.TopHeadlines)
	if c.Politicians != nil {
		if st, ok := c.Politicians.State(c.PlayerID); ok {
			s.Approval = st.ApprovalRating
			s.Capital = st.PoliticalCapital
		}
	}
}

func printSummary(s Summary) {
	fmt.Println("=========================================")
	fmt.Println("LEGISLATURA - Simulation Summary")
	fmt.Println("=========================================")
	fmt.Printf("Seed:          %d\n", s.Seed)
	fmt.Printf("Period:        %s -> %s (%d days)\n", s.Start, s.End, s.Days)
	fmt.Printf("New bills:     %d\n", s.NewBills)
	fmt.Printf("Bills passed:  %d\n", len(s.BillsPassed))
	fmt.Printf("Bills failed:  %d\n", len(s.BillsFailed))
	fmt.Printf("News items:    %d\n", s.News)
	fmt.Printf("Phase errors:  %d\n", s.PhaseErrors)
	fmt.Printf("Approval:      %.1f\n", s.Approval)
	fmt.Printf("Capital:       %.1f\n", s.Capital)
	for _, e := range s.Elections {
		fmt.Println("Election:     ", e)
	}
	if len(s.TopHeadlines) > 0 {
		fmt.Println("\nMajor headlines:")
		for _, h := range s.TopHeadlines {
			fmt.Println("  " + h)
		}
	}
}
