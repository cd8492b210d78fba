package reminder

import "sync"

// DefaultLedgerKeyLimit caps how many fired reminder keys are retained per
// event. Old cycles can never fire again once their window has passed, so
// dropping their keys is safe and keeps the ledger bounded.
const DefaultLedgerKeyLimit = 64

// pruneMissThreshold is how many consecutive passes an event must be absent
// before its ledger entry is dropped. A wholesale event swap may transiently
// omit an event; pruning it immediately would let the same occurrence
// re-fire when it returns.
const pruneMissThreshold = 3

// Ledger records which reminder keys have already fired per event so
// repeated evaluation passes and restarts never duplicate a notification
// within one occurrence cycle.
type Ledger struct {
	mu       sync.RWMutex
	fired    map[string][]string
	misses   map[string]int
	keyLimit int
}

// NewLedger constructs a ledger seeded from previously persisted state.
// A nil seed yields an empty ledger.
func NewLedger(seed map[string][]string, keyLimit int) *Ledger {
	if keyLimit <= 0 {
		keyLimit = DefaultLedgerKeyLimit
	}

	fired := make(map[string][]string, len(seed))
	for eventID, keys := range seed {
		if eventID == "" || len(keys) == 0 {
			continue
		}
		if len(keys) > keyLimit {
			keys = keys[len(keys)-keyLimit:]
		}
		fired[eventID] = append([]string(nil), keys...)
	}

	return &Ledger{fired: fired, misses: make(map[string]int), keyLimit: keyLimit}
}

// Has reports whether the reminder key already fired for the event.
func (l *Ledger) Has(eventID, key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, fired := range l.fired[eventID] {
		if fired == key {
			return true
		}
	}
	return false
}

// Record marks the reminder key as fired for the event, evicting the oldest
// keys beyond the retention cap.
func (l *Ledger) Record(eventID, key string) {
	if eventID == "" || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	keys := append(l.fired[eventID], key)
	if len(keys) > l.keyLimit {
		keys = keys[len(keys)-l.keyLimit:]
	}
	l.fired[eventID] = keys
	delete(l.misses, eventID)
}

// PruneMissing drops ledger entries for events that have been absent from
// pruneMissThreshold consecutive snapshots, returning how many entries were
// removed. Events present in the snapshot have their absence streak reset.
func (l *Ledger) PruneMissing(present map[string]struct{}) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0
	for eventID := range l.fired {
		if _, ok := present[eventID]; ok {
			delete(l.misses, eventID)
			continue
		}
		l.misses[eventID]++
		if l.misses[eventID] < pruneMissThreshold {
			continue
		}
		delete(l.fired, eventID)
		delete(l.misses, eventID)
		pruned++
	}
	return pruned
}

// Snapshot returns a deep copy of the ledger state for persistence.
func (l *Ledger) Snapshot() map[string][]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string][]string, len(l.fired))
	for eventID, keys := range l.fired {
		out[eventID] = append([]string(nil), keys...)
	}
	return out
}
