package ai

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/MRamiBalles/Legislatura/internal/events"
)

// NewsroomSystemPrompt frames the model as the in-game local press.
const NewsroomSystemPrompt = `You are the news desk of a local paper covering city, state and national politics.
Write short, neutral, plausible coverage of the event you are given.
Never invent officials by name. Keep headlines under 90 characters and bodies under 3 sentences.

Always reply with JSON in this exact format:
{"headline": "...", "body": "..."}`

// BuildArticlePrompt describes a world event for a first report.
func BuildArticlePrompt(ev events.WorldEvent) string {
	var sb strings.Builder
	sb.WriteString("## EVENT\n\n")
	fmt.Fprintf(&sb, "Date: %s\n", ev.Date)
	fmt.Fprintf(&sb, "Title: %s\n", ev.Title)
	fmt.Fprintf(&sb, "Description: %s\n", ev.Description)
	fmt.Fprintf(&sb, "Category: %s\n", ev.Category)
	fmt.Fprintf(&sb, "Severity: %s\n", ev.Severity)
	fmt.Fprintf(&sb, "Scope: %s\n", ev.Scope)
	for i, eff := range ev.Effects {
		if i >= 5 {
			sb.WriteString("- ...\n")
			break
		}
		fmt.Fprintf(&sb, "- %s %s %.2f\n", eff.Path, eff.Op, eff.Value)
	}
	sb.WriteString("\n## TASK\n\nWrite the first report on this event.\n")
	return sb.String()
}

// BuildFollowUpPrompt asks for coverage of the political fallout.
func BuildFollowUpPrompt(ev events.WorldEvent) string {
	var sb strings.Builder
	sb.WriteString(BuildArticlePrompt(ev))
	sb.WriteString("This is a follow-up: focus on the pressure it puts on local leaders.\n")
	return sb.String()
}

// Story is the structured reply expected from the model.
type Story struct {
	Headline string
	Body     string
}

// ParseStory extracts a Story from a model reply. Replies wrapped in a
// markdown code fence are accepted.
func ParseStory(content string) (Story, error) {
	raw := strings.TrimSpace(content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return Story{}, fmt.Errorf("reply is not JSON")
	}
	res := gjson.GetMany(raw, "headline", "body")
	s := Story{Headline: strings.TrimSpace(res[0].String()), Body: strings.TrimSpace(res[1].String())}
	if s.Headline == "" {
		return Story{}, fmt.Errorf("missing headline")
	}
	return s, nil
}
