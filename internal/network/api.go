package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/infra/cache"
	"github.com/MRamiBalles/Legislatura/internal/infra/storage"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// API is the HTTP surface over a Session.
type API struct {
	session *engine.Session
	hub     *Hub
	cache   *cache.CampaignCache
	recap   *storage.Reconstructor
	metrics http.Handler
	logger  *logger.Logger
}

// APIOption configures optional collaborators.
type APIOption func(*API)

// WithCache serves status reads from the Redis read-model.
func WithCache(c *cache.CampaignCache) APIOption {
	return func(a *API) { a.cache = c }
}

// WithRecap enables GET /api/recap.
func WithRecap(r *storage.Reconstructor) APIOption {
	return func(a *API) { a.recap = r }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) APIOption {
	return func(a *API) { a.metrics = h }
}

// NewAPI creates the handler set. hub may be nil to disable /ws.
func NewAPI(session *engine.Session, hub *Hub, log *logger.Logger, opts ...APIOption) *API {
	if log == nil {
		log = logger.Discard()
	}
	a := &API{session: session, hub: hub, logger: log}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache != nil {
		session.Observe(a.refreshCache)
	}
	return a
}

// refreshCache keeps the read-model current after every committed change.
func (a *API) refreshCache(c *campaign.Campaign, _ *engine.TickResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.cache.Store(ctx, c); err != nil {
		a.logger.Warn("status cache write failed", "error", err)
	}
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}
	if a.hub != nil {
		r.Get("/ws", a.hub.ServeWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/campaign/status", a.handleStatus)
		r.Get("/bills", a.handleBills)
		r.Get("/events", a.handleEvents)
		r.Get("/recap", a.handleRecap)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/advance-day", a.command(CommandAdvanceDay))
			r.Post("/advance-to-next-election", a.command(CommandNextElection))
			r.Post("/advance-to-next-year", a.command(CommandNextYear))
			r.Post("/votes", a.command(CommandCastVote))
			r.Post("/bills", a.command(CommandProposeBill))
			r.Post("/staff-tasks", a.command(CommandStaffTask))
			r.Post("/elections/{id}/resolve", a.handleResolveElection)
		})
	})
	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (a *API) campaignID() string {
	return a.session.Campaign().ID
}

// handleStatus returns the headline campaign view.
// GET /api/campaign/status
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.cache != nil {
		st, err := a.cache.GetStatus(ctx, a.campaignID())
		if err == nil {
			a.writeJSON(w, http.StatusOK, st)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			a.logger.Warn("status cache read failed", "error", err)
		}
	}
	c := a.session.Campaign()
	st := cache.StatusOf(c)
	if a.cache != nil {
		if err := a.cache.Store(ctx, c); err != nil {
			a.logger.Warn("status cache write failed", "error", err)
		}
	}
	a.writeJSON(w, http.StatusOK, st)
}

// handleBills lists active bills.
// GET /api/bills
func (a *API) handleBills(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.session.Campaign().ActiveBills())
}

// handleRecap lists notable events since a date.
// GET /api/recap?since=2025-03-01
func (a *API) handleRecap(w http.ResponseWriter, r *http.Request) {
	if a.recap == nil {
		a.jsonError(w, "recap requires persistent storage", http.StatusNotImplemented)
		return
	}
	since, err := calendar.Parse(r.URL.Query().Get("since"))
	if err != nil {
		a.jsonError(w, "since must be a YYYY-MM-DD date", http.StatusBadRequest)
		return
	}
	c := a.session.Campaign()
	entries, err := a.recap.Recap(r.Context(), c.ID, c.PlayerID, since)
	if err != nil {
		a.logger.Error("recap failed", "error", err)
		a.jsonError(w, "recap failed", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, entries)
}

// handleResolveElection decides the election named in the path.
// POST /api/elections/{id}/resolve
func (a *API) handleResolveElection(w http.ResponseWriter, r *http.Request) {
	raw, _ := json.Marshal(ResolveRequest{ElectionID: chi.URLParam(r, "id")})
	a.run(w, r, CommandResolveElection, raw)
}

// command adapts a named command to a POST handler whose body is the payload.
func (a *API) command(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				a.jsonError(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}
		a.run(w, r, kind, raw)
	}
}

func (a *API) run(w http.ResponseWriter, r *http.Request, kind string, raw json.RawMessage) {
	result, err := execute(r.Context(), a.session, kind, raw)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			a.logger.Error("command failed", "command", kind, "error", err)
		}
		a.jsonError(w, err.Error(), status)
		return
	}
	status := http.StatusOK
	if kind == CommandProposeBill || kind == CommandStaffTask {
		status = http.StatusCreated
	}
	a.writeJSON(w, status, result)
}

// errorStatus maps engine sentinels to HTTP codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownBill), errors.Is(err, engine.ErrUnknownElection):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoQueuedVote), errors.Is(err, engine.ErrNoActionPoints),
		errors.Is(err, engine.ErrElectionPending):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode response", "error", err)
	}
}

// jsonError sends an error response.
func (a *API) jsonError(w http.ResponseWriter, message string, status int) {
	a.writeJSON(w, status, errorBody(message))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
