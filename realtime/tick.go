package realtime

import "context"

// processTick applies one tick's worth of batched events, in deterministic
// order, each through the interpreter's normal synchronous SendEvent (which
// already drains eventless transitions and the internal queue to
// quiescence before returning).
func (a *Actor) processTick() {
	events := a.collectEvents()
	sortEvents(events)

	ctx := context.Background()
	for _, em := range events {
		a.interp.SendEvent(ctx, em.Event)
	}
}

// collectEvents atomically retrieves and clears the pending event batch.
func (a *Actor) collectEvents() []EventWithMeta {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	events := a.eventBatch
	a.eventBatch = make([]EventWithMeta, 0, cap(a.eventBatch))
	return events
}
