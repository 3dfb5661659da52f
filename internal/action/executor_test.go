package action

import (
	"context"
	"testing"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/eventqueue"
	"github.com/comalice/scxmlgo/internal/evaluator"
)

func newTestExecutor() (*Executor, *eventqueue.Queue, *evaluator.Datamodel) {
	q := eventqueue.New()
	dm := evaluator.NewDatamodel()
	x := NewExecutor(evaluator.NewExprEvaluator(), q, dm, evaluator.SystemVars{})
	return x, q, dm
}

func TestExecutorAssign(t *testing.T) {
	x, _, dm := newTestExecutor()
	x.Run(context.Background(), []document.Action{
		document.AssignAction{Location: "count", Expr: "1 + 2"},
	}, document.Event{})
	v, ok := dm.Get("count")
	if !ok || v != 3 {
		t.Errorf("count = %v, %v", v, ok)
	}
}

func TestExecutorRaiseEnqueuesInternal(t *testing.T) {
	x, q, _ := newTestExecutor()
	x.Run(context.Background(), []document.Action{
		document.RaiseAction{Event: "ping"},
	}, document.Event{})
	e, ok := q.Next()
	if !ok || e.Name != "ping" || e.Origin != document.Internal {
		t.Errorf("got %+v, %v", e, ok)
	}
}

func TestExecutorIfElse(t *testing.T) {
	x, _, dm := newTestExecutor()
	dm.Set("flag", false)
	cond := "flag"
	x.Run(context.Background(), []document.Action{
		document.IfAction{Branches: []document.IfBranch{
			{Cond: &cond, Body: []document.Action{document.AssignAction{Location: "result", Expr: `"yes"`}}},
			{Cond: nil, Body: []document.Action{document.AssignAction{Location: "result", Expr: `"no"`}}},
		}},
	}, document.Event{})
	v, _ := dm.Get("result")
	if v != "no" {
		t.Errorf("result = %v", v)
	}
}

func TestExecutorForeach(t *testing.T) {
	x, _, dm := newTestExecutor()
	dm.Set("items", []any{1, 2, 3})
	x.Run(context.Background(), []document.Action{
		document.ForeachAction{
			Array: "items", Item: "it", Index: "idx",
			Body: []document.Action{document.AssignAction{Location: "last", Expr: "it"}},
		},
	}, document.Event{})
	v, _ := dm.Get("last")
	if v != 3 {
		t.Errorf("last = %v", v)
	}
}

func TestExecutorSendInternalTarget(t *testing.T) {
	x, q, _ := newTestExecutor()
	x.Run(context.Background(), []document.Action{
		document.SendAction{Event: "done", Target: "#_internal"},
	}, document.Event{})
	e, ok := q.Next()
	if !ok || e.Name != "done" || e.Origin != document.External {
		t.Errorf("got %+v, %v", e, ok)
	}
}

func TestExecutorAssignFailureEnqueuesErrorExecution(t *testing.T) {
	x, q, _ := newTestExecutor()
	x.Run(context.Background(), []document.Action{
		document.AssignAction{Location: "x", Expr: "this is not valid expr $$$"},
	}, document.Event{})
	e, ok := q.Next()
	if !ok || e.Name != document.ErrorExecutionPrefix {
		t.Fatalf("expected error.execution event, got %+v, %v", e, ok)
	}
}
