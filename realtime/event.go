package realtime

import (
	"sort"

	"github.com/comalice/scxmlgo/internal/document"
)

// EventWithMeta adds sequencing metadata for deterministic ordering within
// a tick's batch.
type EventWithMeta struct {
	Event       document.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders a tick's batch deterministically: higher priority
// first, then FIFO by sequence number. Stable sort preserves insertion
// order for equal priorities.
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
