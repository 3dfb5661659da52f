// Package interpreter implements the macrostep/microstep execution loop
// spec.md SS4.I describes: initialization into the starting configuration,
// send_event dispatch, the bounded microstep loop, and the exit/entry set
// computation that drives state transitions.
//
// Grounded on the teacher's internal/core/machine.go Machine (RWMutex-
// guarded state, functional options, fire-and-forget persist/publish
// after releasing the lock) and statechart.go's Runtime (exit/entry via
// LCCA walk). Unlike the teacher's asynchronous channel-driven Machine,
// spec.md SS5 requires send_event to be synchronous ("one event in, one
// deterministic macrostep out"); the channel-actor wrapping the teacher
// built into Machine itself now lives one layer up, in realtime.Actor.
package interpreter

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/comalice/scxmlgo/internal/action"
	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/eventqueue"
	"github.com/comalice/scxmlgo/internal/evaluator"
	"github.com/comalice/scxmlgo/internal/runtime"
	"github.com/comalice/scxmlgo/internal/transition"
	"github.com/comalice/scxmlgo/internal/validator"
)

var tracer = otel.Tracer("github.com/comalice/scxmlgo/internal/interpreter")

const defaultMicrostepCeiling = 1000

// Interpreter is one running chart instance. Its Document is shared,
// immutable, and safe to reuse across many Interpreters; everything else
// (Configuration, queues, datamodel, history) belongs to this instance
// alone and is guarded by mu for concurrent SendEvent callers.
type Interpreter struct {
	mu sync.Mutex

	doc    *document.Document
	config *runtime.Configuration
	hist   *runtime.HistoryTracker
	queue  *eventqueue.Queue
	dm     *evaluator.Datamodel
	eval   evaluator.Evaluator
	exec   *action.Executor

	sessionID string

	// pendingInvoke/pendingTargets hold registrations made via
	// WithInvokeHandler/WithSendTarget before exec is built (exec needs
	// the fully-resolved evaluator and SystemVars, which are only known
	// once every Option has run).
	pendingInvoke  action.InvokeHandler
	pendingTargets map[string]action.SendTarget

	ceiling      int
	onTransition func(from, to []string)

	// SnapshotHook, when set, is invoked with the post-macrostep
	// configuration outside the lock (fire-and-forget, matching the
	// teacher's persist/publish goroutine), so a host can wire a
	// production.Persister/EventPublisher without the interpreter
	// importing them directly.
	snapshotHook func(ctx context.Context, leaves []string, dm map[string]any)
}

// Option configures an Interpreter at construction time, following the
// teacher's functional-options shape (internal/core/options.go).
type Option func(*Interpreter)

// WithMicrostepCeiling overrides the default 1000-iteration bound on the
// microstep loop (spec.md SS4.I).
func WithMicrostepCeiling(n int) Option {
	return func(i *Interpreter) { i.ceiling = n }
}

// WithEvaluator overrides the default expr-lang/expr Evaluator.
func WithEvaluator(e evaluator.Evaluator) Option {
	return func(i *Interpreter) { i.eval = e }
}

// WithInvokeHandler registers a host <invoke> implementation.
func WithInvokeHandler(h action.InvokeHandler) Option {
	return func(i *Interpreter) { i.pendingInvoke = h }
}

// WithSendTarget registers a delivery function for a named <send> target.
func WithSendTarget(name string, t action.SendTarget) Option {
	return func(i *Interpreter) { i.pendingTargets[name] = t }
}

// WithSnapshotHook registers a fire-and-forget callback run after each
// macrostep settles, outside the interpreter's lock — the seam a host
// uses to wire production.Persister/EventPublisher.
func WithSnapshotHook(hook func(ctx context.Context, leaves []string, dm map[string]any)) Option {
	return func(i *Interpreter) { i.snapshotHook = hook }
}

// WithOnTransition registers a callback invoked synchronously after every
// microstep that executes targeted transitions, with the leaf
// configuration before and after (equal for a self-transition), useful
// for test assertions and CLI tracing.
func WithOnTransition(fn func(from, to []string)) Option {
	return func(i *Interpreter) { i.onTransition = fn }
}

// WithSessionID overrides the interpreter's generated "_sessionid" built-
// in (spec.md SS4.F), letting a host supply a deterministic or externally
// tracked identifier instead of the default crypto/rand-derived one.
func WithSessionID(id string) Option {
	return func(i *Interpreter) { i.sessionID = id }
}

// New constructs an Interpreter over doc without entering any states;
// call Initialize to compute the starting configuration and run entry
// actions. doc is validated here if it has not been already (its Cache
// is nil).
func New(doc *document.Document, opts ...Option) (*Interpreter, error) {
	if doc.Cache == nil {
		res := validator.Validate(doc)
		if !res.Ok() {
			return nil, fmt.Errorf("interpreter: document failed validation: %v", res.Diagnostics)
		}
	}

	dm := evaluator.NewDatamodel()
	q := eventqueue.New()

	i := &Interpreter{
		doc:            doc,
		config:         runtime.NewConfiguration(),
		hist:           runtime.NewHistoryTracker(),
		queue:          q,
		dm:             dm,
		eval:           evaluator.NewExprEvaluator(),
		sessionID:      newSessionID(),
		ceiling:        defaultMicrostepCeiling,
		pendingTargets: make(map[string]action.SendTarget),
	}

	for _, opt := range opts {
		opt(i)
	}

	i.compileConds()

	i.exec = action.NewExecutor(i.eval, q, dm, i.systemVars())
	if i.pendingInvoke != nil {
		i.exec.WithInvokeHandler(i.pendingInvoke)
	}
	for name, t := range i.pendingTargets {
		i.exec.WithSendTarget(name, t)
	}
	return i, nil
}

// systemVars snapshots the interpreter's fixed identity (session id, chart
// name) and wires a live Configuration callback, per spec.md SS4.F.
func (i *Interpreter) systemVars() evaluator.SystemVars {
	return evaluator.SystemVars{
		SessionID: i.sessionID,
		Name:      i.doc.Name,
		Configuration: func() []string {
			return i.config.AllActiveStates()
		},
	}
}

// compileConds compiles every transition's raw Cond into CondProg using
// i.eval, the fully-resolved evaluator (any WithEvaluator override has
// already run by the time New calls this). Compilation must happen here
// rather than in validator.Validate, since Validate has no evaluator to
// compile against and a custom Evaluator's Run/RunBool may not accept a
// program compiled by a different implementation.
//
// A transition whose Cond is already compiled (CondProg != nil, e.g. a
// test fixture built one by hand) is left untouched. A transition whose
// Cond fails to compile gets the document.CondCompileFailed sentinel
// instead, per spec.md SS7.2: the transition is never enabled, but the
// interpreter itself does not fail to construct over it.
func (i *Interpreter) compileConds() {
	for _, t := range i.doc.AllTransitions() {
		if t.Cond == "" || t.CondProg != nil {
			continue
		}
		prog, err := i.eval.Compile(t.Cond)
		if err != nil {
			slog.Warn("interpreter: guard failed to compile, transition disabled", "cond", t.Cond, "source", t.Source, "err", err)
			t.CondProg = document.CondCompileFailed
			continue
		}
		t.CondProg = prog
	}
}

// newSessionID generates a default "_sessionid" built-in using
// crypto/rand, per spec.md SS9 ("driven from an injected clock/entropy
// source" — WithSessionID lets a host override it with a deterministic
// value for testing or replay).
func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "scxmlsession-unseeded"
	}
	return fmt.Sprintf("scxmlsession-%x", b[:])
}

// Initialize populates the datamodel from the document's top-level
// <data> declarations, computes the starting configuration, runs entry
// actions, then drains the initial microstep loop (eventless
// transitions may fire before any external event arrives).
func (i *Interpreter) Initialize(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, decl := range i.doc.DataModel {
		i.initData(decl)
	}

	start, err := i.doc.InitialState()
	if err != nil {
		return fmt.Errorf("interpreter: initialize: %w", err)
	}

	entrySet := i.resolveEntryRecursive(start.ID)
	i.enterStates(ctx, entrySet)
	i.config.SetLeaves(i.computeLeaves())

	i.runMicrosteps(ctx)
	return nil
}

func (i *Interpreter) initData(decl document.DataDecl) {
	switch {
	case decl.HasExpr():
		prog, err := i.eval.Compile(decl.Expr)
		var val any
		if err == nil {
			val, err = i.eval.Run(prog, evaluator.BuildEvalContext(i.dm, document.Event{}, i.systemVars()))
		}
		if err != nil {
			slog.Warn("data init failed", "id", decl.ID, "err", err)
			i.dm.Set(decl.ID, nil)
			i.queue.PushInternal(document.NewInternalEvent(document.ErrorExecutionPrefix, document.ErrorData{
				Type:   "execution",
				Reason: err.Error(),
				DataID: decl.ID,
			}))
			return
		}
		i.dm.Set(decl.ID, val)
	case decl.HasContent():
		i.dm.Set(decl.ID, decl.Content)
	case decl.HasSrc():
		slog.Warn("data src loading not supported by core interpreter", "id", decl.ID, "src", decl.Src)
	}
}

// SendEvent dispatches an external event synchronously: finds enabled
// transitions, executes them as one microstep if any exist, then drains
// the microstep loop to quiescence. Non-matching events leave the
// configuration unchanged after the drain, per spec.md SS6.
func (i *Interpreter) SendEvent(ctx context.Context, evt document.Event) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sendEventLocked(ctx, evt)
}

func (i *Interpreter) sendEventLocked(ctx context.Context, evt document.Event) {
	ctx, span := tracer.Start(ctx, "scxml.send_event", trace.WithAttributes(
		attribute.String("scxml.event", evt.Name),
	))
	defer span.End()

	cands := i.selectTransitions(evt.Name, evt)
	if len(cands) > 0 {
		i.executeMicrostep(ctx, cands, evt)
	}
	i.runMicrosteps(ctx)

	if i.snapshotHook != nil {
		leaves := i.config.Leaves()
		dmSnapshot := i.dm.Snapshot()
		go i.snapshotHook(context.Background(), leaves, dmSnapshot)
	}
}

// runMicrosteps drains eventless transitions and the event queue to
// quiescence, bounded by i.ceiling (spec.md SS4.I, SS7 tier 5). Eventless
// transitions go first, then internal events; events waiting on the
// external queue (e.g. from <send>) are taken only once both are exhausted.
func (i *Interpreter) runMicrosteps(ctx context.Context) {
	for n := 0; n < i.ceiling; n++ {
		cands := i.selectTransitions("", document.Event{})
		if len(cands) > 0 {
			i.executeMicrostep(ctx, cands, document.Event{})
			continue
		}
		evt, ok := i.queue.Next()
		if !ok {
			return
		}
		innerCands := i.selectTransitions(evt.Name, evt)
		if len(innerCands) > 0 {
			i.executeMicrostep(ctx, innerCands, evt)
		}
	}
	slog.Warn("interpreter: microstep ceiling reached, halting with last consistent configuration", "ceiling", i.ceiling)
}

func (i *Interpreter) selectTransitions(eventName string, evt document.Event) []transition.Candidate {
	_, span := tracer.Start(context.Background(), "scxml.microstep")
	defer span.End()

	env := evaluator.BuildEvalContext(i.dm, evt, i.systemVars())
	active := i.config.AllActiveStates()
	cands := transition.FindEnabledTransitions(i.doc, active, eventName, i.eval, env)
	return transition.ResolveConflicts(i.doc, cands)
}

// Stop clears the active configuration without running any exit
// actions, for host-driven teardown.
func (i *Interpreter) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.config = runtime.NewConfiguration()
}

// IsActive reports whether id is part of the current active configuration.
func (i *Interpreter) IsActive(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.config.IsActive(id)
}

// ActiveLeafStates returns the current leaf configuration.
func (i *Interpreter) ActiveLeafStates() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.config.Leaves()
}

// AllActiveStates returns the full active configuration, leaves and
// ancestors.
func (i *Interpreter) AllActiveStates() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	all := i.config.AllActiveStates()
	sort.Strings(all)
	return all
}

// Datamodel exposes a read-only snapshot of the chart's current extended
// state.
func (i *Interpreter) Datamodel() map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dm.Snapshot()
}

// Document returns the interpreter's backing document.
func (i *Interpreter) Document() *document.Document {
	return i.doc
}
