package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultChatURL is the chat completions endpoint used when none is configured.
	DefaultChatURL = "https://api.openai.com/v1/chat/completions"
	// DefaultChatModel writes copy when no model is configured.
	DefaultChatModel = "gpt-4o-mini"
)

// promptOverhead approximates the tokens of the system prompt and brief.
const promptOverhead = 1000

// usdPerToken is a blended price per model; unknown models use the fallback.
var usdPerToken = map[string]float64{
	"gpt-4o":      0.00003,
	"gpt-4o-mini": 0.0000005,
}

const fallbackUSDPerToken = 0.00001

// ChatConfig points a ChatWire at an OpenAI-compatible endpoint.
type ChatConfig struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

// ChatWire files copy through a chat completions API.
type ChatWire struct {
	cfg       ChatConfig
	client    *http.Client
	allowance *Allowance

	mu     sync.Mutex
	ledger Ledger
}

// NewChatWire returns a wire spending against allowance. A nil allowance
// leaves spend uncapped.
func NewChatWire(cfg ChatConfig, allowance *Allowance) *ChatWire {
	if cfg.URL == "" {
		cfg.URL = DefaultChatURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &ChatWire{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		allowance: allowance,
		ledger:    Ledger{Filed: map[StoryKind]int{}},
	}
}

func (w *ChatWire) Name() string { return "chat:" + w.cfg.Model }

// Ready reports whether credentials are configured.
func (w *ChatWire) Ready() bool { return w.cfg.APIKey != "" }

func (w *ChatWire) cost(tokens int) float64 {
	rate, ok := usdPerToken[w.cfg.Model]
	if !ok {
		rate = fallbackUSDPerToken
	}
	return float64(tokens) * rate
}

// File commissions one story.
func (w *ChatWire) File(ctx context.Context, a Assignment) (Copy, error) {
	if !w.Ready() {
		return Copy{}, ErrUnavailable
	}
	if w.allowance != nil && !w.allowance.Covers(w.cost(promptOverhead+a.MaxWords)) {
		return Copy{}, fmt.Errorf("%w: %s", ErrBudgetExceeded, w.allowance)
	}

	body, err := w.body(a)
	if err != nil {
		return Copy{}, fmt.Errorf("build %s request: %w", a.Kind, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Copy{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return Copy{}, fmt.Errorf("%s: %w", w.Name(), err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Copy{}, fmt.Errorf("%s: read reply: %w", w.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return Copy{}, fmt.Errorf("%s: status %d: %s", w.Name(), resp.StatusCode, bytes.TrimSpace(raw))
	}
	if !gjson.ValidBytes(raw) {
		return Copy{}, fmt.Errorf("%s: reply is not JSON", w.Name())
	}
	text := gjson.GetBytes(raw, "choices.0.message.content")
	if !text.Exists() {
		return Copy{}, fmt.Errorf("%s: reply has no choices", w.Name())
	}

	out := Copy{
		Text:    text.String(),
		Model:   gjson.GetBytes(raw, "model").String(),
		Tokens:  int(gjson.GetBytes(raw, "usage.total_tokens").Int()),
		Elapsed: time.Since(start),
	}
	spent := w.cost(out.Tokens)
	if w.allowance != nil {
		w.allowance.Charge(spent)
	}
	w.mu.Lock()
	w.ledger.Filed[a.Kind]++
	w.ledger.Tokens += out.Tokens
	w.ledger.SpentUSD += spent
	w.mu.Unlock()
	return out, nil
}

// body renders the chat completions payload for an assignment.
func (w *ChatWire) body(a Assignment) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, v)
		}
	}
	set("model", w.cfg.Model)
	set("messages", []map[string]string{
		{"role": "system", "content": NewsroomSystemPrompt},
		{"role": "user", "content": a.Brief},
	})
	if a.MaxWords > 0 {
		set("max_tokens", a.MaxWords)
	}
	if a.Tone > 0 {
		set("temperature", a.Tone)
	}
	return doc, err
}

// Ledger returns a snapshot of filed copy and spend.
func (w *ChatWire) Ledger() Ledger {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.ledger
	out.Filed = make(map[StoryKind]int, len(w.ledger.Filed))
	for k, v := range w.ledger.Filed {
		out.Filed[k] = v
	}
	if w.allowance != nil {
		out.Remaining = w.allowance.Left()
	}
	return out
}

var _ Wire = (*ChatWire)(nil)
