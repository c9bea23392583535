package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finora"

var (
	// AutomationRuns counts automation passes per workspace by outcome (ok, error).
	AutomationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_runs_total",
			Help:      "Automation driver runs by result",
		},
		[]string{"result"},
	)

	RecurrencesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurrences_generated_total",
			Help:      "Recurring occurrences created",
		},
	)

	RecurrenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurrence_failures_total",
			Help:      "Recurring occurrences that could not be created",
		},
	)

	GoalContributions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goal_auto_contributions_total",
			Help:      "Automatic goal contributions created",
		},
	)

	InvoicePayments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_payments_total",
			Help:      "Card invoices settled",
		},
	)

	// CategorySuggestions counts suggestions by source (cache, classifier, fallback).
	CategorySuggestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_suggestions_total",
			Help:      "Category suggestions by source",
		},
		[]string{"source"},
	)

	// RealtimeClients is the number of open /ws connections
	RealtimeClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_clients",
			Help:      "Connected realtime clients",
		},
	)

	// RealtimeEvents counts events delivered to clients by event type
	RealtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Realtime events delivered by type",
		},
		[]string{"type"},
	)

	AutomationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "automation_duration_seconds",
			Help:      "Duration of one workspace automation run",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		AutomationRuns,
		RecurrencesGenerated,
		RecurrenceFailures,
		GoalContributions,
		InvoicePayments,
		CategorySuggestions,
		AutomationDuration,
		RealtimeClients,
		RealtimeEvents,
	)
}

// Handler exposes the default registry for scraping
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
