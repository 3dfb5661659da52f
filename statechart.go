// Package scxmlgo is an embeddable, synchronous SCXML/Harel statechart
// interpreter: parse a chart from XML (internal/xmlsource) or assemble one
// programmatically (builder), then drive it one event at a time with
// Instance.SendEvent — "one event in, one deterministic macrostep out", no
// background goroutines or channels required.
//
// Grounded on the teacher's own statechart.go: this file keeps that file's
// public surface shape (a top-level constructor producing an instance that
// owns SendEvent/IsInState) but delegates every behavior to the document/
// validator/runtime/transition/action/interpreter pipeline those packages
// implement, rather than re-running the teacher's own hierarchy/LCA/queue
// logic at this layer.
package scxmlgo

import (
	"context"
	"io"

	"github.com/comalice/scxmlgo/internal/action"
	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/interpreter"
	"github.com/comalice/scxmlgo/internal/validator"
	"github.com/comalice/scxmlgo/internal/xmlsource"
)

// Chart is a parsed, validated document, immutable and safe to share across
// many concurrently-running Instances.
type Chart struct {
	doc *document.Document
}

// ParseXML reads an SCXML document from r and validates it. Warnings cover
// recognized-but-unsupported constructs (e.g. <data src="...">); they do not
// block use of the returned Chart.
func ParseXML(r io.Reader) (*Chart, []xmlsource.Warning, error) {
	doc, warnings, err := xmlsource.Parse(r)
	if err != nil {
		return nil, nil, err
	}
	res := validator.Validate(doc)
	if !res.Ok() {
		return nil, warnings, &ValidationError{Diagnostics: res.Diagnostics}
	}
	return &Chart{doc: doc}, warnings, nil
}

// FromDocument wraps an already-built document.Document (typically produced
// by the builder package) as a Chart, validating it if that has not already
// happened.
func FromDocument(doc *document.Document) (*Chart, error) {
	if doc.Cache == nil {
		res := validator.Validate(doc)
		if !res.Ok() {
			return nil, &ValidationError{Diagnostics: res.Diagnostics}
		}
	}
	return &Chart{doc: doc}, nil
}

// ValidationError reports every structural problem validator.Validate found,
// rather than just the first.
type ValidationError struct {
	Diagnostics []validator.Diagnostic
}

func (e *ValidationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "scxmlgo: document failed validation"
	}
	msg := "scxmlgo: document failed validation: " + e.Diagnostics[0].String()
	for _, d := range e.Diagnostics[1:] {
		msg += "; " + d.String()
	}
	return msg
}

// Option configures an Instance at construction time; it is an alias of
// interpreter.Option so callers never need to import internal/interpreter.
type Option = interpreter.Option

var (
	WithMicrostepCeiling = interpreter.WithMicrostepCeiling
	WithEvaluator        = interpreter.WithEvaluator
	WithInvokeHandler    = interpreter.WithInvokeHandler
	WithSendTarget       = interpreter.WithSendTarget
	WithSnapshotHook     = interpreter.WithSnapshotHook
	WithOnTransition     = interpreter.WithOnTransition
	WithSessionID        = interpreter.WithSessionID
)

// InvokeHandler and SendTarget are re-exported so hosts implementing
// <invoke>/<send target="..."> callbacks don't need internal/action either.
type (
	InvokeHandler = action.InvokeHandler
	SendTarget    = action.SendTarget
)

// Instance is one running chart: its configuration, datamodel, and event
// queue. Create one with Chart.New, call Initialize once, then drive it
// with SendEvent.
type Instance struct {
	interp *interpreter.Interpreter
}

// New creates an Instance over c. The instance is not yet in any state;
// call Initialize before sending events.
func (c *Chart) New(opts ...Option) (*Instance, error) {
	interp, err := interpreter.New(c.doc, opts...)
	if err != nil {
		return nil, err
	}
	return &Instance{interp: interp}, nil
}

// Initialize populates the datamodel from <data> declarations, enters the
// starting configuration, and drains any eventless transitions that fire
// before the first external event.
func (in *Instance) Initialize(ctx context.Context) error {
	return in.interp.Initialize(ctx)
}

// SendEvent dispatches an external event by name and optional data payload,
// synchronously running it to a settled macrostep before returning.
func (in *Instance) SendEvent(ctx context.Context, name string, data any) {
	in.interp.SendEvent(ctx, document.NewExternalEvent(name, data))
}

// IsActive reports whether id is part of the instance's current active
// configuration (ancestors included).
func (in *Instance) IsActive(id string) bool {
	return in.interp.IsActive(id)
}

// ActiveLeafStates returns the instance's current leaf configuration.
func (in *Instance) ActiveLeafStates() []string {
	return in.interp.ActiveLeafStates()
}

// AllActiveStates returns every active state id, leaves and ancestors,
// sorted for deterministic output.
func (in *Instance) AllActiveStates() []string {
	return in.interp.AllActiveStates()
}

// Datamodel returns a read-only snapshot of the instance's extended state.
func (in *Instance) Datamodel() map[string]any {
	return in.interp.Datamodel()
}

// Stop clears the active configuration without running exit actions, for
// host-driven teardown.
func (in *Instance) Stop() {
	in.interp.Stop()
}

// Document exposes the instance's backing document, mostly useful for
// tooling (realtime.Actor, internal/production, cmd/scxmlviz).
func (c *Chart) Document() *document.Document {
	return c.doc
}
