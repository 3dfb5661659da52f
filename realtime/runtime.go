package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/interpreter"
)

// Actor drives an interpreter.Interpreter on a fixed tick, batching events
// submitted between ticks instead of applying them immediately.
type Actor struct {
	interp *interpreter.Interpreter

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64

	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// Config configures an Actor's tick cadence and batching capacity.
type Config struct {
	TickRate         time.Duration // e.g. 16.67ms for 60 FPS
	MaxEventsPerTick int           // default 1000
}

// NewActor constructs an Actor over an Interpreter built from doc.
func NewActor(doc *document.Document, cfg Config, opts ...interpreter.Option) (*Actor, error) {
	if cfg.MaxEventsPerTick == 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}

	interp, err := interpreter.New(doc, opts...)
	if err != nil {
		return nil, err
	}

	return &Actor{
		interp:     interp,
		tickRate:   cfg.TickRate,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
		stopped:    make(chan struct{}),
	}, nil
}

// Start enters the initial configuration and begins the tick loop.
func (a *Actor) Start(ctx context.Context) error {
	if err := a.interp.Initialize(ctx); err != nil {
		return err
	}

	a.tickCtx, a.tickCancel = context.WithCancel(ctx)
	a.ticker = time.NewTicker(a.tickRate)
	go a.tickLoop()
	return nil
}

// Stop halts the tick loop and clears the interpreter's configuration.
func (a *Actor) Stop() error {
	if a.tickCancel != nil {
		a.tickCancel()
	}
	if a.ticker != nil {
		a.ticker.Stop()
	}
	<-a.stopped
	a.interp.Stop()
	return nil
}

func (a *Actor) tickLoop() {
	defer close(a.stopped)
	for {
		select {
		case <-a.tickCtx.Done():
			return
		case <-a.ticker.C:
			a.processTick()
			a.batchMu.Lock()
			a.tickNum++
			a.batchMu.Unlock()
		}
	}
}

// SendEvent queues an external event for the next tick (thread-safe). No
// context parameter: the event is only dispatched once the tick fires.
func (a *Actor) SendEvent(name string, data any) error {
	return a.SendEventWithPriority(name, data, 0)
}

// SendEventWithPriority queues an event with an explicit priority; higher
// values are dispatched earlier within the same tick.
func (a *Actor) SendEventWithPriority(name string, data any, priority int) error {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	if len(a.eventBatch) >= cap(a.eventBatch) {
		return errors.New("realtime: event queue full")
	}
	a.eventBatch = append(a.eventBatch, EventWithMeta{
		Event:       document.NewExternalEvent(name, data),
		SequenceNum: a.sequenceNum,
		Priority:    priority,
	})
	a.sequenceNum++
	return nil
}

// TickNumber returns the current tick count.
func (a *Actor) TickNumber() uint64 {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()
	return a.tickNum
}

// ActiveLeafStates returns the interpreter's current leaf configuration.
func (a *Actor) ActiveLeafStates() []string {
	return a.interp.ActiveLeafStates()
}

// AllActiveStates returns every active state id, leaves and ancestors.
func (a *Actor) AllActiveStates() []string {
	return a.interp.AllActiveStates()
}

// Datamodel returns a read-only snapshot of the chart's extended state.
func (a *Actor) Datamodel() map[string]any {
	return a.interp.Datamodel()
}
