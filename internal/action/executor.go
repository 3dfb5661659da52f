// Package action executes the executable-content actions attached to
// transitions and onentry/onexit handlers: assign, raise, log, if/elseif/
// else, foreach, send, cancel, and invoke (spec.md SS4.G). A failure in
// any one action enqueues an error.execution event and aborts only the
// remaining actions in that same block, never the whole microstep — per
// spec.md SS7's "executable content errors are recoverable".
//
// Grounded on the teacher's internal/core/machine.go defaultActionRun for
// the "never abort the macrostep" error-handling shape, generalized from
// a single ActionRunner callback into a full per-kind executor since the
// teacher deferred all <if>/<foreach>/<send> semantics to the adapter.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/eventqueue"
	"github.com/comalice/scxmlgo/internal/evaluator"
)

// InvokeHandler is the host hook for <invoke> (spec.md SS6: "deferred to
// host, not implemented by the core interpreter"). A nil handler makes
// <invoke> a no-op other than a log line, which keeps documents that
// declare invokes but never rely on their side effects runnable without
// a host registration.
type InvokeHandler func(ctx context.Context, inv document.InvokeAction, dm *evaluator.Datamodel) error

// SendTarget delivers a <send> event to an external destination named by
// SendAction.Target. The default Executor only supports the "#_internal"
// pseudo-target (looping the event back onto the chart's own external
// queue after its delay elapses); a host registers additional targets
// (e.g. "http://...", a message broker topic) through WithSendTarget.
type SendTarget func(ctx context.Context, send document.SendAction, data map[string]any) error

// Executor runs action lists against a chart's queue and datamodel.
type Executor struct {
	eval    evaluator.Evaluator
	queue   *eventqueue.Queue
	dm      *evaluator.Datamodel
	sys     evaluator.SystemVars
	invoke  InvokeHandler
	targets map[string]SendTarget
	pending map[string]context.CancelFunc // active delayed sends, keyed by send id
}

func NewExecutor(eval evaluator.Evaluator, queue *eventqueue.Queue, dm *evaluator.Datamodel, sys evaluator.SystemVars) *Executor {
	return &Executor{
		eval:    eval,
		queue:   queue,
		dm:      dm,
		sys:     sys,
		targets: make(map[string]SendTarget),
		pending: make(map[string]context.CancelFunc),
	}
}

func (x *Executor) env(evt document.Event) map[string]any {
	return evaluator.BuildEvalContext(x.dm, evt, x.sys)
}

// WithInvokeHandler registers the host's <invoke> implementation.
func (x *Executor) WithInvokeHandler(h InvokeHandler) *Executor {
	x.invoke = h
	return x
}

// WithSendTarget registers a delivery function for a named <send> target.
func (x *Executor) WithSendTarget(name string, t SendTarget) *Executor {
	x.targets[name] = t
	return x
}

// Run executes a block of actions in document order. A failing action
// enqueues error.execution and stops the remainder of this block, but
// Run itself never returns an error — failures are reported purely
// through the event queue, matching spec.md SS7.
func (x *Executor) Run(ctx context.Context, actions []document.Action, evt document.Event) {
	for _, a := range actions {
		if err := x.runOne(ctx, a, evt); err != nil {
			slog.Warn("action execution failed", "err", err)
			x.queue.PushInternal(document.NewInternalEvent(document.ErrorExecutionPrefix, document.ErrorData{
				Type:   "execution",
				Reason: err.Error(),
			}))
			return
		}
	}
}

func (x *Executor) runOne(ctx context.Context, a document.Action, evt document.Event) error {
	switch v := a.(type) {
	case document.AssignAction:
		return x.runAssign(v, evt)
	case document.RaiseAction:
		x.queue.PushInternal(document.NewInternalEvent(v.Event, nil))
		return nil
	case document.LogAction:
		return x.runLog(v, evt)
	case document.IfAction:
		return x.runIf(ctx, v, evt)
	case document.ForeachAction:
		return x.runForeach(ctx, v, evt)
	case document.SendAction:
		return x.runSend(ctx, v, evt)
	case document.CancelAction:
		return x.runCancel(v, evt)
	case document.InvokeAction:
		return x.runInvoke(ctx, v)
	default:
		return fmt.Errorf("action: unknown action kind %T", a)
	}
}

func (x *Executor) runAssign(a document.AssignAction, evt document.Event) error {
	prog, err := x.eval.Compile(a.Expr)
	if err != nil {
		return fmt.Errorf("assign %q: %w", a.Location, err)
	}
	val, err := x.eval.Run(prog, x.env(evt))
	if err != nil {
		return fmt.Errorf("assign %q: %w", a.Location, err)
	}
	return x.dm.AssignValue(a.Location, val)
}

func (x *Executor) runLog(a document.LogAction, evt document.Event) error {
	if a.Expr == "" {
		slog.Info("scxml log", "label", a.Label)
		return nil
	}
	prog, err := x.eval.Compile(a.Expr)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	val, err := x.eval.Run(prog, x.env(evt))
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	slog.Info("scxml log", "label", a.Label, "value", val)
	return nil
}

func (x *Executor) runIf(ctx context.Context, a document.IfAction, evt document.Event) error {
	for _, branch := range a.Branches {
		if branch.Cond == nil {
			x.Run(ctx, branch.Body, evt)
			return nil
		}
		prog, err := x.eval.Compile(*branch.Cond)
		if err != nil {
			return fmt.Errorf("if cond %q: %w", *branch.Cond, err)
		}
		if x.eval.RunBool(prog, x.env(evt)) {
			x.Run(ctx, branch.Body, evt)
			return nil
		}
	}
	return nil
}

func (x *Executor) runForeach(ctx context.Context, a document.ForeachAction, evt document.Event) error {
	prog, err := x.eval.Compile(a.Array)
	if err != nil {
		return fmt.Errorf("foreach array %q: %w", a.Array, err)
	}
	arrVal, err := x.eval.Run(prog, x.env(evt))
	if err != nil {
		return fmt.Errorf("foreach array %q: %w", a.Array, err)
	}
	items, ok := arrVal.([]any)
	if !ok {
		return fmt.Errorf("foreach array %q did not evaluate to an iterable", a.Array)
	}
	prevItem, hadItem := x.dm.Get(a.Item)
	var prevIndex any
	var hadIndex bool
	if a.Index != "" {
		prevIndex, hadIndex = x.dm.Get(a.Index)
	}

	for i, item := range items {
		x.dm.Set(a.Item, item)
		if a.Index != "" {
			x.dm.Set(a.Index, i)
		}
		x.Run(ctx, a.Body, evt)
	}

	// Restore prior bindings (spec.md SS4.G: item/index are bound in a
	// shallow scope, not left behind for the rest of the document's life).
	if hadItem {
		x.dm.Set(a.Item, prevItem)
	} else {
		x.dm.Delete(a.Item)
	}
	if a.Index != "" {
		if hadIndex {
			x.dm.Set(a.Index, prevIndex)
		} else {
			x.dm.Delete(a.Index)
		}
	}
	return nil
}

func (x *Executor) runSend(ctx context.Context, a document.SendAction, evt document.Event) error {
	eventName := a.Event
	if a.EventExpr != "" {
		prog, err := x.eval.Compile(a.EventExpr)
		if err != nil {
			return fmt.Errorf("send eventexpr: %w", err)
		}
		out, err := x.eval.Run(prog, x.env(evt))
		if err != nil {
			return fmt.Errorf("send eventexpr: %w", err)
		}
		eventName = fmt.Sprintf("%v", out)
	}

	data, err := x.resolveSendParams(a, evt)
	if err != nil {
		return err
	}

	target := a.Target
	if a.TargetExpr != "" {
		prog, err := x.eval.Compile(a.TargetExpr)
		if err != nil {
			return fmt.Errorf("send targetexpr: %w", err)
		}
		out, err := x.eval.Run(prog, x.env(evt))
		if err != nil {
			return fmt.Errorf("send targetexpr: %w", err)
		}
		target = fmt.Sprintf("%v", out)
	}

	delay, err := x.resolveDelay(a, evt)
	if err != nil {
		return err
	}

	deliver := func() {
		if target == "" || target == "#_internal" {
			x.queue.PushExternal(document.NewExternalEvent(eventName, data))
			return
		}
		fn, ok := x.targets[target]
		if !ok {
			x.queue.PushInternal(document.NewInternalEvent(document.ErrorCommunicationPrefix, document.ErrorData{
				Type:   "communication",
				Reason: fmt.Sprintf("unknown send target %q", target),
			}))
			return
		}
		if err := fn(ctx, a, data); err != nil {
			x.queue.PushInternal(document.NewInternalEvent(document.ErrorCommunicationPrefix, document.ErrorData{
				Type:   "communication",
				Reason: err.Error(),
			}))
		}
	}

	if delay <= 0 {
		deliver()
		return nil
	}

	sendCtx, cancel := context.WithCancel(ctx)
	if a.ID != "" {
		x.pending[a.ID] = cancel
	}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-sendCtx.Done():
		case <-timer.C:
			deliver()
		}
	}()
	return nil
}

func (x *Executor) resolveSendParams(a document.SendAction, evt document.Event) (map[string]any, error) {
	data := make(map[string]any, len(a.Params))
	for _, p := range a.Params {
		if p.Location != "" {
			v, _ := x.dm.Get(p.Location)
			data[p.Name] = v
			continue
		}
		prog, err := x.eval.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("send param %q: %w", p.Name, err)
		}
		v, err := x.eval.Run(prog, x.env(evt))
		if err != nil {
			return nil, fmt.Errorf("send param %q: %w", p.Name, err)
		}
		data[p.Name] = v
	}
	if a.Content != "" {
		data["_content"] = a.Content
	}
	return data, nil
}

func (x *Executor) resolveDelay(a document.SendAction, evt document.Event) (time.Duration, error) {
	raw := a.Delay
	if a.DelayExpr != "" {
		prog, err := x.eval.Compile(a.DelayExpr)
		if err != nil {
			return 0, fmt.Errorf("send delayexpr: %w", err)
		}
		out, err := x.eval.Run(prog, x.env(evt))
		if err != nil {
			return 0, fmt.Errorf("send delayexpr: %w", err)
		}
		raw = fmt.Sprintf("%v", out)
	}
	if raw == "" {
		return 0, nil
	}
	return parseDelay(raw)
}

// parseDelay accepts SCXML's "<number>ms" / "<number>s" forms, falling
// back to Go's time.ParseDuration for anything that already parses.
func parseDelay(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("unparseable delay %q", raw)
}

func (x *Executor) runCancel(a document.CancelAction, evt document.Event) error {
	id := a.SendID
	if a.SendIDExpr != "" {
		prog, err := x.eval.Compile(a.SendIDExpr)
		if err != nil {
			return fmt.Errorf("cancel sendidexpr: %w", err)
		}
		out, err := x.eval.Run(prog, x.env(evt))
		if err != nil {
			return fmt.Errorf("cancel sendidexpr: %w", err)
		}
		id = fmt.Sprintf("%v", out)
	}
	if cancel, ok := x.pending[id]; ok {
		cancel()
		delete(x.pending, id)
	}
	return nil
}

func (x *Executor) runInvoke(ctx context.Context, a document.InvokeAction) error {
	if x.invoke == nil {
		slog.Info("invoke skipped, no handler registered", "id", a.ID, "type", a.Type)
		return nil
	}
	return x.invoke(ctx, a, x.dm)
}
