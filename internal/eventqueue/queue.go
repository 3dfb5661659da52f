// Package eventqueue implements spec.md SS4.E's two-queue event model: an
// unbounded internal FIFO for events raised during microsteps (<raise>,
// done events, error events) and an external FIFO for events delivered by
// callers or by <send>. The interpreter always drains the internal queue
// completely before looking at the external queue, per spec.md SS3's
// macrostep definition.
//
// Grounded on the teacher's statechart.go processMicrosteps/SendEvent
// queue handling, generalized into its own package and given an explicit
// EventSource abstraction lifted from internal/extensibility/eventsource.go.
package eventqueue

import (
	"context"
	"sync"
	"time"

	"github.com/comalice/scxmlgo/internal/document"
)

// Queue holds the internal and external event FIFOs for one running
// chart. Not safe for concurrent Push from multiple goroutines without
// external synchronization beyond what Queue itself guarantees for the
// external side; the interpreter owns the internal side exclusively from
// within its own event loop.
type Queue struct {
	mu       sync.Mutex
	internal []document.Event
	external []document.Event
}

func New() *Queue {
	return &Queue{}
}

// PushInternal enqueues an internally-raised event (<raise>, done events,
// error events). Internal events always drain before external ones.
func (q *Queue) PushInternal(e document.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.internal = append(q.internal, e)
}

// PushExternal enqueues an externally-delivered event (Interpreter.SendEvent,
// a <send> target looping back, a timer firing).
func (q *Queue) PushExternal(e document.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.external = append(q.external, e)
}

// Next pops the next event to process: internal queue first, external
// second. Returns false if both queues are empty.
func (q *Queue) Next() (document.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.internal) > 0 {
		e := q.internal[0]
		q.internal = q.internal[1:]
		return e, true
	}
	if len(q.external) > 0 {
		e := q.external[0]
		q.external = q.external[1:]
		return e, true
	}
	return document.Event{}, false
}

// HasInternal reports whether the internal queue still has pending
// events.
func (q *Queue) HasInternal() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.internal) > 0
}

// Len reports the combined pending event count, used for diagnostics and
// queue-depth tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.internal) + len(q.external)
}

// EventSource is an external feed of events into a running chart —
// implemented by ChannelEventSource, TimerEventSource, or a custom
// adapter (e.g. a message-broker consumer).
type EventSource interface {
	// Events returns a receive-only channel of events for the host to
	// forward into a chart (e.g. via Interpreter.SendEvent or
	// realtime.Actor.SendEvent); nothing in this module reads it.
	Events() <-chan document.Event
}

// ChannelEventSource adapts a plain Go channel of events into an
// EventSource, for tests and simple in-process producers.
type ChannelEventSource struct {
	ch chan document.Event
}

func NewChannelEventSource(ch chan document.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

func (s *ChannelEventSource) Events() <-chan document.Event {
	return s.ch
}

// TimerEventSource emits a named event on a fixed interval until its
// context is cancelled, for <send delay="..."> timeouts and heartbeat
// style charts.
type TimerEventSource struct {
	ch     chan document.Event
	ticker *time.Ticker
	cancel context.CancelFunc
}

// NewTimerEventSource starts a goroutine emitting eventName every d onto
// a small buffered channel; ticks are dropped (not queued) if the
// consumer falls behind, matching the teacher's "drop if full"
// backpressure choice, since timer events are inherently lossy signals.
func NewTimerEventSource(ctx context.Context, eventName string, data any, d time.Duration) *TimerEventSource {
	ctx, cancel := context.WithCancel(ctx)
	t := &TimerEventSource{
		ch:     make(chan document.Event, 10),
		ticker: time.NewTicker(d),
		cancel: cancel,
	}
	go t.run(ctx, eventName, data)
	return t
}

func (t *TimerEventSource) run(ctx context.Context, eventName string, data any) {
	defer close(t.ch)
	defer t.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.ticker.C:
			select {
			case t.ch <- document.NewExternalEvent(eventName, data):
			default:
			}
		}
	}
}

func (t *TimerEventSource) Events() <-chan document.Event {
	return t.ch
}

// Stop cancels the timer's goroutine and closes its channel.
func (t *TimerEventSource) Stop() {
	t.cancel()
}
