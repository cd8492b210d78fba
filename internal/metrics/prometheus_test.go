package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusSink_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)

	sink.TickStarted()
	sink.TickStarted()
	sink.TickSkipped()
	sink.TickCompleted(5 * time.Millisecond)
	sink.ReminderFired("annually")
	sink.ReminderFired("annually")
	sink.ReminderFired("")
	sink.DigestFired(3)
	sink.EventSkipped()
	sink.StoreWriteFailed("notifications")

	if got := testutil.ToFloat64(sink.ticksTotal); got != 2 {
		t.Errorf("expected 2 ticks, got %v", got)
	}
	if got := testutil.ToFloat64(sink.ticksSkippedTotal); got != 1 {
		t.Errorf("expected 1 skipped tick, got %v", got)
	}
	if got := testutil.ToFloat64(sink.remindersFiredTotal.WithLabelValues("annually")); got != 2 {
		t.Errorf("expected 2 annual reminders, got %v", got)
	}
	if got := testutil.ToFloat64(sink.remindersFiredTotal.WithLabelValues("none")); got != 1 {
		t.Errorf("expected the empty recurrence mapped to none, got %v", got)
	}
	if got := testutil.ToFloat64(sink.digestsFiredTotal); got != 1 {
		t.Errorf("expected 1 digest, got %v", got)
	}
	if got := testutil.ToFloat64(sink.eventsSkippedTotal); got != 1 {
		t.Errorf("expected 1 skipped event, got %v", got)
	}
	if got := testutil.ToFloat64(sink.storeWriteFailures.WithLabelValues("notifications")); got != 1 {
		t.Errorf("expected 1 store write failure, got %v", got)
	}
}

func TestPrometheusSink_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewPrometheusSink(reg)
	// A second sink on the same registry logs registration failures but
	// must still be usable.
	sink := NewPrometheusSink(reg)
	sink.TickStarted()
	sink.DigestFired(1)
}

func TestNoopSatisfiesSink(t *testing.T) {
	t.Parallel()

	var sink Sink = Noop{}
	sink.TickStarted()
	sink.TickSkipped()
	sink.TickCompleted(time.Millisecond)
	sink.ReminderFired("weekly")
	sink.DigestFired(0)
	sink.EventSkipped()
	sink.StoreWriteFailed("events")
}
