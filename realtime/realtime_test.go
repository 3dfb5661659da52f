package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/scxmlgo/builder"
)

func TestActorTicksAndAppliesBatchedEvents(t *testing.T) {
	doc, res, err := builder.Build("traffic", "red", nil,
		builder.Atomic("red", builder.On("go", []string{"green"})),
		builder.Atomic("green", builder.On("go", []string{"red"})),
	)
	if err != nil {
		t.Fatalf("build: %v, diagnostics: %v", err, res.Diagnostics)
	}

	a, err := NewActor(doc, Config{TickRate: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("new actor: %v", err)
	}
	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Stop()

	if leaves := a.ActiveLeafStates(); len(leaves) != 1 || leaves[0] != "red" {
		t.Fatalf("expected [red], got %v", leaves)
	}

	if err := a.SendEvent("go", nil); err != nil {
		t.Fatalf("send event: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if a.TickNumber() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a tick")
		case <-time.After(time.Millisecond):
		}
	}

	deadline = time.After(2 * time.Second)
	for {
		leaves := a.ActiveLeafStates()
		if len(leaves) == 1 && leaves[0] == "green" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("event never applied, leaves = %v", leaves)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSendEventWithPriorityRejectsWhenFull(t *testing.T) {
	doc, _, err := builder.Build("m", "s", nil, builder.Atomic("s"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, err := NewActor(doc, Config{TickRate: time.Hour, MaxEventsPerTick: 1})
	if err != nil {
		t.Fatalf("new actor: %v", err)
	}
	if err := a.SendEvent("a", nil); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := a.SendEvent("b", nil); err == nil {
		t.Error("expected error once batch capacity is exceeded")
	}
}
