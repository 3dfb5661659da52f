// Package testutil provides RuntimeAdapter, a common interface over both
// ways of driving a chart — the synchronous Instance and the tick-based
// realtime.Actor — so the same conformance test can run against either and
// confirm they reach equivalent configurations.
//
// Grounded on the teacher's testutil/adapter.go (EventDrivenAdapter /
// TickBasedAdapter over statechartx.Runtime / realtime.RealtimeRuntime),
// adapted to interpreter.Interpreter / realtime.Actor.
package testutil

import (
	"context"
	"time"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/interpreter"
	"github.com/comalice/scxmlgo/realtime"
)

// RuntimeAdapter is implemented by both SyncAdapter and TickBasedAdapter.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(name string, data any) error
	IsInState(stateID string) bool
	ActiveLeafStates() []string
	WaitForStability(timeout time.Duration) error
}

// SyncAdapter wraps an interpreter.Interpreter directly: SendEvent runs a
// full macrostep before returning, so WaitForStability is a no-op.
type SyncAdapter struct {
	interp *interpreter.Interpreter
}

func NewSyncAdapter(doc *document.Document, opts ...interpreter.Option) (*SyncAdapter, error) {
	interp, err := interpreter.New(doc, opts...)
	if err != nil {
		return nil, err
	}
	return &SyncAdapter{interp: interp}, nil
}

func (a *SyncAdapter) Start(ctx context.Context) error {
	return a.interp.Initialize(ctx)
}

func (a *SyncAdapter) Stop() error {
	a.interp.Stop()
	return nil
}

func (a *SyncAdapter) SendEvent(name string, data any) error {
	a.interp.SendEvent(context.Background(), document.NewExternalEvent(name, data))
	return nil
}

func (a *SyncAdapter) IsInState(stateID string) bool {
	return a.interp.IsActive(stateID)
}

func (a *SyncAdapter) ActiveLeafStates() []string {
	return a.interp.ActiveLeafStates()
}

func (a *SyncAdapter) WaitForStability(timeout time.Duration) error {
	return nil
}

// TickBasedAdapter wraps a realtime.Actor; events are only applied once the
// next tick fires, so WaitForStability sleeps at least one tick period.
type TickBasedAdapter struct {
	actor    *realtime.Actor
	tickRate time.Duration
}

func NewTickBasedAdapter(doc *document.Document, tickRate time.Duration, opts ...interpreter.Option) (*TickBasedAdapter, error) {
	actor, err := realtime.NewActor(doc, realtime.Config{TickRate: tickRate}, opts...)
	if err != nil {
		return nil, err
	}
	return &TickBasedAdapter{actor: actor, tickRate: tickRate}, nil
}

func (a *TickBasedAdapter) Start(ctx context.Context) error {
	return a.actor.Start(ctx)
}

func (a *TickBasedAdapter) Stop() error {
	return a.actor.Stop()
}

func (a *TickBasedAdapter) SendEvent(name string, data any) error {
	return a.actor.SendEvent(name, data)
}

func (a *TickBasedAdapter) IsInState(stateID string) bool {
	for _, id := range a.actor.AllActiveStates() {
		if id == stateID {
			return true
		}
	}
	return false
}

func (a *TickBasedAdapter) ActiveLeafStates() []string {
	return a.actor.ActiveLeafStates()
}

func (a *TickBasedAdapter) WaitForStability(timeout time.Duration) error {
	time.Sleep(a.tickRate + 5*time.Millisecond)
	return nil
}
