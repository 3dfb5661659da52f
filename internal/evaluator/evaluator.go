// Package evaluator compiles and runs condition/value expressions against
// the chart's datamodel and the current event, per spec.md SS4.F. The
// default Evaluator is backed by github.com/expr-lang/expr, compiling
// once (interpreter.New compiles every transition's Cond into
// document.Transition.CondProg, after any WithEvaluator override has been
// applied) and running many times against a fresh env built per
// evaluation.
//
// Grounded on comalice-maelstrom's registry/statechart/spec.go
// resolveGuard, which compiles guard expressions with expr.Compile(name,
// expr.AsBool()) and runs them against an env built from the live
// datamodel and event payload, generalized from a single guard string to
// every expression site spec.md SS3 allows (cond, assign expr, param
// expr, donedata expr, foreach array/item/index) and to the full
// variable-visibility contract spec.md SS4.F names (datamodel keys as
// top-level vars, _event, _sessionid, _name, _ioprocessors,
// _configuration, In()).
package evaluator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/comalice/scxmlgo/internal/document"
)

// Evaluator compiles and runs expressions against a Datamodel + event.
// Compile is split from Run so the interpreter can compile once (at
// construction time) and cache the program on document.Transition.CondProg,
// avoiding recompilation on every microstep.
type Evaluator interface {
	Compile(source string) (any, error)
	Run(program any, env map[string]any) (any, error)
	// RunBool evaluates a compiled boolean program; a non-bool result or
	// a run error is treated as false and logged, so the transition is
	// treated as not enabled. No error.execution event is raised for it.
	RunBool(program any, env map[string]any) bool
	// ResolveLocation splits an <assign>/<foreach> location expression
	// into path components, per spec.md SS4.F operation 3. Rejects
	// expressions with leading/trailing whitespace, per spec.md SS4.F.
	ResolveLocation(source string) ([]string, error)
}

// ExprEvaluator is the default Evaluator, backed by expr-lang/expr.
type ExprEvaluator struct{}

func NewExprEvaluator() *ExprEvaluator { return &ExprEvaluator{} }

func (e *ExprEvaluator) Compile(source string) (any, error) {
	prog, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("evaluator: compile %q: %w", source, err)
	}
	return prog, nil
}

func (e *ExprEvaluator) Run(program any, env map[string]any) (any, error) {
	prog, ok := program.(*vm.Program)
	if !ok {
		return nil, fmt.Errorf("evaluator: program is not a compiled *vm.Program (got %T)", program)
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return nil, fmt.Errorf("evaluator: run: %w", err)
	}
	return out, nil
}

func (e *ExprEvaluator) RunBool(program any, env map[string]any) bool {
	out, err := e.Run(program, env)
	if err != nil {
		slog.Warn("evaluator: guard run failed, treating as false", "err", err)
		return false
	}
	b, ok := out.(bool)
	if !ok {
		slog.Warn("evaluator: guard result not boolean, treating as false", "value", out)
		return false
	}
	return b
}

// ResolveLocation splits an <assign>/<foreach> location path on "." after
// rejecting an expression with leading or trailing whitespace, per
// spec.md SS4.F operation 3 ("resolve_location"). A bare identifier with
// no dot yields a single-element path.
func (e *ExprEvaluator) ResolveLocation(source string) ([]string, error) {
	if source != strings.TrimSpace(source) {
		return nil, fmt.Errorf("evaluator: location %q has leading/trailing whitespace", source)
	}
	if source == "" {
		return nil, fmt.Errorf("evaluator: empty location")
	}
	return strings.Split(source, "."), nil
}

// SystemVars carries the SCXML built-in variables that are scoped to an
// interpreter instance rather than to the datamodel: the session id and
// chart name (fixed for the instance's lifetime) and a live snapshot of
// the active configuration (queried fresh on every BuildEvalContext call,
// since it changes every microstep).
type SystemVars struct {
	SessionID     string
	Name          string
	Configuration func() []string
}

// BuildEvalContext assembles the env map every expression site evaluates
// against, per spec.md SS4.F: the datamodel's keys as top-level
// variables; the current event as both a structured "_event" (name,
// type, and data) and, when its data is itself an object, that object's
// keys merged in at top level; the SCXML built-ins "_sessionid", "_name",
// "_ioprocessors" and "_configuration"; and a host-visible "In" predicate
// over the live configuration.
func BuildEvalContext(dm *Datamodel, evt document.Event, sys SystemVars) map[string]any {
	env := make(map[string]any, 8)
	for k, v := range dm.Snapshot() {
		env[k] = v
	}

	env["_event"] = map[string]any{
		"name": evt.Name,
		"type": evt.Origin.String(),
		"data": evt.Data,
	}
	if fields, ok := evt.Data.(map[string]any); ok {
		for k, v := range fields {
			env[k] = v
		}
	}

	env["_sessionid"] = sys.SessionID
	env["_name"] = sys.Name
	env["_ioprocessors"] = []any{}

	var active map[string]bool
	if sys.Configuration != nil {
		all := sys.Configuration()
		env["_configuration"] = all
		active = make(map[string]bool, len(all))
		for _, id := range all {
			active[id] = true
		}
	}
	env["In"] = func(stateID string) bool { return active[stateID] }

	return env
}
