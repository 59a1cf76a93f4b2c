package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

var (
	// ErrUnavailable means the wire has no credentials.
	ErrUnavailable = errors.New("ai: wire not configured")
	// ErrBudgetExceeded means the allowance refused the assignment.
	ErrBudgetExceeded = errors.New("ai: desk allowance exhausted")
)

// NewsWriter is a NewsProcessor that commissions coverage from a Wire and
// runs the fallback's copy whenever the wire is silent.
type NewsWriter struct {
	wire     Wire
	fallback collaborators.NewsProcessor
	timeout  time.Duration
	logger   *logger.Logger
	spiked   atomic.Int64
}

// NewNewsWriter wraps fallback with wire-written articles.
func NewNewsWriter(wire Wire, fallback collaborators.NewsProcessor, log *logger.Logger) *NewsWriter {
	if log == nil {
		log = logger.Discard()
	}
	return &NewsWriter{wire: wire, fallback: fallback, timeout: 10 * time.Second, logger: log}
}

// Article implements collaborators.NewsProcessor.
func (w *NewsWriter) Article(ev events.WorldEvent) (events.NewsItem, error) {
	item, err := w.fallback.Article(ev)
	if err != nil {
		return item, err
	}
	return w.rewrite(item, KindArticle, BuildArticlePrompt(ev)), nil
}

// FollowUp implements collaborators.NewsProcessor.
func (w *NewsWriter) FollowUp(ev events.WorldEvent) (events.NewsItem, error) {
	item, err := w.fallback.FollowUp(ev)
	if err != nil {
		return item, err
	}
	return w.rewrite(item, KindFollowUp, BuildFollowUpPrompt(ev)), nil
}

// Spiked counts wire stories discarded for the fallback's copy.
func (w *NewsWriter) Spiked() int64 { return w.spiked.Load() }

// rewrite replaces headline and body with the wire's story, keeping every
// other field from the fallback item.
func (w *NewsWriter) rewrite(item events.NewsItem, kind StoryKind, brief string) events.NewsItem {
	if w.wire == nil || !w.wire.Ready() {
		return item
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	filed, err := w.wire.File(ctx, Assignment{
		Kind:      kind,
		RelatedID: item.RelatedID,
		Brief:     brief,
		MaxWords:  200,
		Tone:      0.7,
	})
	if err != nil {
		w.spiked.Add(1)
		w.logger.Warn("news writer fell back", "wire", w.wire.Name(), "kind", kind, "related", item.RelatedID, "error", err)
		return item
	}
	story, err := ParseStory(filed.Text)
	if err != nil {
		w.spiked.Add(1)
		w.logger.Warn("news writer reply rejected", "wire", w.wire.Name(), "kind", kind, "related", item.RelatedID, "error", err)
		return item
	}
	item.Headline = story.Headline
	if story.Body != "" {
		item.Body = story.Body
	}
	return item
}

var _ collaborators.NewsProcessor = (*NewsWriter)(nil)
