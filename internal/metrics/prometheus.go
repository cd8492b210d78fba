package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated; a collector that
// fails to register still works, it just is not exported.
type PrometheusSink struct {
	ticksTotal          prometheus.Counter
	ticksSkippedTotal   prometheus.Counter
	tickDuration        prometheus.Histogram
	remindersFiredTotal *prometheus.CounterVec
	digestsFiredTotal   prometheus.Counter
	digestEventCount    prometheus.Histogram
	eventsSkippedTotal  prometheus.Counter
	storeWriteFailures  *prometheus.CounterVec
}

// NewPrometheusSink creates and registers the planner metric collectors.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_reminder_ticks_total",
			Help: "Total number of reminder evaluation passes.",
		}),
		ticksSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_reminder_ticks_skipped_total",
			Help: "Evaluation passes skipped because the previous pass was still running.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_reminder_tick_duration_seconds",
			Help:    "Duration of each evaluation pass in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		remindersFiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_reminders_fired_total",
			Help: "Total reminder notifications emitted.",
		}, []string{"recurrence"}),
		digestsFiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_digests_fired_total",
			Help: "Total daily digest notifications emitted.",
		}),
		digestEventCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_digest_event_count",
			Help:    "Number of next-day events reported per digest.",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		eventsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_events_skipped_total",
			Help: "Malformed events excluded from evaluation passes.",
		}),
		storeWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_store_write_failures_total",
			Help: "Durable store write failures by logical key.",
		}, []string{"key"}),
	}

	register(reg, s.ticksTotal, "planner_reminder_ticks_total")
	register(reg, s.ticksSkippedTotal, "planner_reminder_ticks_skipped_total")
	register(reg, s.tickDuration, "planner_reminder_tick_duration_seconds")
	register(reg, s.remindersFiredTotal, "planner_reminders_fired_total")
	register(reg, s.digestsFiredTotal, "planner_digests_fired_total")
	register(reg, s.digestEventCount, "planner_digest_event_count")
	register(reg, s.eventsSkippedTotal, "planner_events_skipped_total")
	register(reg, s.storeWriteFailures, "planner_store_write_failures_total")

	return s
}

func register(reg prometheus.Registerer, collector prometheus.Collector, name string) {
	if reg == nil {
		return
	}
	if err := reg.Register(collector); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) TickSkipped() {
	s.ticksSkippedTotal.Inc()
}

func (s *PrometheusSink) TickCompleted(duration time.Duration) {
	s.tickDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) ReminderFired(recurrence string) {
	if recurrence == "" {
		recurrence = "none"
	}
	s.remindersFiredTotal.WithLabelValues(recurrence).Inc()
}

func (s *PrometheusSink) DigestFired(eventCount int) {
	s.digestsFiredTotal.Inc()
	s.digestEventCount.Observe(float64(eventCount))
}

func (s *PrometheusSink) EventSkipped() {
	s.eventsSkippedTotal.Inc()
}

func (s *PrometheusSink) StoreWriteFailed(key string) {
	s.storeWriteFailures.WithLabelValues(key).Inc()
}

var _ Sink = (*PrometheusSink)(nil)
