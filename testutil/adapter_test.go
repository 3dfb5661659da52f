package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/scxmlgo/builder"
	"github.com/comalice/scxmlgo/internal/document"
)

func buildTestDoc(t *testing.T) *document.Document {
	t.Helper()
	doc, res, err := builder.Build("m", "a", nil,
		builder.Atomic("a", builder.On("go", []string{"b"})),
		builder.Atomic("b"),
	)
	if err != nil {
		t.Fatalf("build: %v, diagnostics: %v", err, res.Diagnostics)
	}
	return doc
}

// TestAdapterInterface verifies that both adapters reach the same
// configuration after the same sequence of calls.
func TestAdapterInterface(t *testing.T) {
	tests := []struct {
		name    string
		adapter func(t *testing.T) RuntimeAdapter
	}{
		{
			name: "Sync",
			adapter: func(t *testing.T) RuntimeAdapter {
				a, err := NewSyncAdapter(buildTestDoc(t))
				if err != nil {
					t.Fatalf("new sync adapter: %v", err)
				}
				return a
			},
		},
		{
			name: "TickBased",
			adapter: func(t *testing.T) RuntimeAdapter {
				a, err := NewTickBasedAdapter(buildTestDoc(t), 10*time.Millisecond)
				if err != nil {
					t.Fatalf("new tick adapter: %v", err)
				}
				return a
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := tt.adapter(t)

			ctx := context.Background()
			if err := adapter.Start(ctx); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			defer adapter.Stop()

			if !adapter.IsInState("a") {
				t.Errorf("expected initial state a, got %v", adapter.ActiveLeafStates())
			}

			if err := adapter.SendEvent("go", nil); err != nil {
				t.Fatalf("SendEvent failed: %v", err)
			}
			if err := adapter.WaitForStability(1 * time.Second); err != nil {
				t.Fatalf("WaitForStability failed: %v", err)
			}

			if !adapter.IsInState("b") {
				t.Errorf("expected state b after transition, got %v", adapter.ActiveLeafStates())
			}
		})
	}
}

// RunCommonTests demonstrates how to run the same test logic against any
// RuntimeAdapter implementation.
func RunCommonTests(t *testing.T, adapter RuntimeAdapter) {
	ctx := context.Background()
	if err := adapter.Start(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	defer adapter.Stop()

	if !adapter.IsInState("a") {
		t.Error("IsInState(a) should be true initially")
	}

	if err := adapter.SendEvent("go", nil); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	adapter.WaitForStability(1 * time.Second)
}
