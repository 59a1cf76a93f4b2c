// Package clock advances a session on a wall-clock schedule so a campaign
// keeps moving while nobody presses "next day".
package clock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// Advancer is the part of engine.Session the clock drives.
type Advancer interface {
	AdvanceDay(ctx context.Context) (*engine.TickResult, error)
}

// Clock runs one simulated day per interval.
type Clock struct {
	session  Advancer
	interval time.Duration
	logger   *logger.Logger
	stopChan chan struct{}
	paused   atomic.Bool
}

// New creates a clock. It does nothing until Start.
func New(session Advancer, interval time.Duration, log *logger.Logger) *Clock {
	if log == nil {
		log = logger.Discard()
	}
	return &Clock{
		session:  session,
		interval: interval,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start blocks, advancing a day on every tick until ctx ends or Stop.
func (c *Clock) Start(ctx context.Context) {
	c.logger.Info("campaign clock started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("campaign clock stopped")
			return
		case <-c.stopChan:
			c.logger.Info("campaign clock silenced")
			return
		case <-ticker.C:
			c.step(ctx)
		}
	}
}

// Stop halts the loop.
func (c *Clock) Stop() {
	close(c.stopChan)
}

func (c *Clock) step(ctx context.Context) {
	res, err := c.session.AdvanceDay(ctx)
	switch {
	case errors.Is(err, engine.ErrElectionPending):
		if !c.paused.Swap(true) {
			c.logger.Info("campaign clock waiting for election night to be resolved")
		}
	case err != nil:
		c.logger.Error("scheduled tick failed", "error", err)
	default:
		c.paused.Store(false)
		c.logger.Debug("scheduled tick", "date", res.Date.String(), "news", len(res.NewsItems))
	}
}

func (c *Clock) isPaused() bool { return c.paused.Load() }
