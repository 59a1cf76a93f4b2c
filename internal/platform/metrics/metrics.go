// Package metrics provides observability for the legislature server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers simulation and transport metrics.
type Collector struct {
	registry *prometheus.Registry

	Ticks            prometheus.Counter
	TickDuration     prometheus.Histogram
	TickFailures     prometheus.Counter
	PhaseErrors      *prometheus.CounterVec
	BillResolutions  *prometheus.CounterVec
	NewsItems        prometheus.Counter
	EventsWritten    prometheus.Counter
	EventWriteErrors prometheus.Counter
	WSConnections    prometheus.Gauge
	WSMessages       *prometheus.CounterVec
	WSErrors         prometheus.Counter
}

// New creates a collector with its own registry, so tests can build many.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_ticks_total",
			Help: "Total simulated days applied",
		}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "legislatura_tick_duration_seconds",
			Help:    "Wall-clock duration of one simulated day",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		TickFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_tick_failures_total",
			Help: "Ticks aborted with the prior state kept",
		}),
		PhaseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legislatura_phase_errors_total",
			Help: "Errors captured inside monthly phases",
		}, []string{"phase"}),
		BillResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legislatura_bill_resolutions_total",
			Help: "Bills reaching a terminal status",
		}, []string{"level", "status"}),
		NewsItems: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_news_items_total",
			Help: "News items produced by ticks",
		}),
		EventsWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_events_written_total",
			Help: "Events persisted to the event log",
		}),
		EventWriteErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_event_write_errors_total",
			Help: "Event log writes that failed",
		}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "legislatura_ws_connections",
			Help: "Active WebSocket connections",
		}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legislatura_ws_messages_total",
			Help: "WebSocket messages by direction",
		}, []string{"direction"}),
		WSErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "legislatura_ws_errors_total",
			Help: "WebSocket read/write errors",
		}),
	}
}

// Registry exposes the registry for tests and custom handlers.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordTick records a simulated day. Call with time.Now() at tick start.
func (c *Collector) RecordTick(start time.Time, err error) {
	c.TickDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.TickFailures.Inc()
		return
	}
	c.Ticks.Inc()
}

// RecordPhaseError counts a captured monthly phase failure.
func (c *Collector) RecordPhaseError(phase string) {
	c.PhaseErrors.WithLabelValues(phase).Inc()
}

// RecordBillResolution counts a bill reaching passed or failed.
func (c *Collector) RecordBillResolution(level, status string) {
	c.BillResolutions.WithLabelValues(level, status).Inc()
}

// RecordNews counts produced news items.
func (c *Collector) RecordNews(n int) {
	c.NewsItems.Add(float64(n))
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(err error) {
	if err != nil {
		c.EventWriteErrors.Inc()
		return
	}
	c.EventsWritten.Inc()
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnections.Add(float64(delta))
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		c.WSMessages.WithLabelValues("in").Inc()
		return
	}
	c.WSMessages.WithLabelValues("out").Inc()
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	c.WSErrors.Inc()
}

// Handler serves the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
