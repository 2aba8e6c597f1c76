package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for EmailBot
type Metrics struct {
	// Send pipeline counters
	EmailsSentTotal      prometheus.Counter
	EmailsDeliveredTotal prometheus.Counter
	EmailsFailedTotal    prometheus.Counter
	EmailsOpenedTotal    prometheus.Counter

	// Scheduler
	AutomationRunning   prometheus.Gauge
	SentToday           prometheus.Gauge
	TicksTotal          prometheus.Counter
	TicksSkippedTotal   *prometheus.CounterVec
	TickDurationSeconds prometheus.Histogram

	// Leads
	LeadsScrapedTotal  prometheus.Counter
	LeadsImportedTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EmailsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_emails_sent_total",
			Help: "Total number of dispatched emails",
		}),
		EmailsDeliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_emails_delivered_total",
			Help: "Total number of emails resolved as delivered",
		}),
		EmailsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_emails_failed_total",
			Help: "Total number of emails resolved as failed",
		}),
		EmailsOpenedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_emails_opened_total",
			Help: "Total number of simulated open events recorded",
		}),
		AutomationRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emailbot_automation_running",
			Help: "1 when the automation scheduler is running, 0 otherwise",
		}),
		SentToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emailbot_sent_today",
			Help: "Emails counted against today's send quota",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_ticks_total",
			Help: "Total number of scheduler ticks processed",
		}),
		TicksSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emailbot_ticks_skipped_total",
			Help: "Scheduler ticks that did no work",
		}, []string{"reason"}),
		TickDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emailbot_tick_duration_seconds",
			Help:    "Duration of queue-processing ticks",
			Buckets: prometheus.DefBuckets,
		}),
		LeadsScrapedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_leads_scraped_total",
			Help: "Total number of leads produced by the scraper",
		}),
		LeadsImportedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emailbot_leads_imported_total",
			Help: "Total number of leads imported from CSV",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.EmailsSentTotal,
		m.EmailsDeliveredTotal,
		m.EmailsFailedTotal,
		m.EmailsOpenedTotal,
		m.AutomationRunning,
		m.SentToday,
		m.TicksTotal,
		m.TicksSkippedTotal,
		m.TickDurationSeconds,
		m.LeadsScrapedTotal,
		m.LeadsImportedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
