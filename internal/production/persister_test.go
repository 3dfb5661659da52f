package production

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

func TestJSONPersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister failed: %v", err)
	}

	snapshot := Snapshot{
		ChartID:   "test-chart",
		Leaves:    []string{"s1"},
		Datamodel: map[string]any{"key": "value", "counter": float64(42)},
		Timestamp: time.Now(),
	}

	if err := p.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := p.Load(context.Background(), "test-chart")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snapJSON, _ := json.Marshal(snapshot)
	loadedJSON, _ := json.Marshal(loaded)
	if !bytes.Equal(snapJSON, loadedJSON) {
		t.Errorf("Snapshot JSON mismatch: want %s, got %s", snapJSON, loadedJSON)
	}
}

func TestJSONPersister_LoadNonExistent(t *testing.T) {
	dir := t.TempDir()
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister failed: %v", err)
	}

	_, err = p.Load(context.Background(), "nonexistent")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist wrapped error, got %v", err)
	}
}

func TestYAMLPersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewYAMLPersister(dir)
	if err != nil {
		t.Fatalf("NewYAMLPersister failed: %v", err)
	}

	snapshot := Snapshot{
		ChartID:   "restore-test",
		Leaves:    []string{"yellow"},
		Datamodel: map[string]any{"restored": true},
		Timestamp: time.Now(),
	}
	if err := p.Save(context.Background(), snapshot); err != nil {
		t.Fatal(err)
	}

	loaded, err := p.Load(context.Background(), "restore-test")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Leaves) != 1 || loaded.Leaves[0] != "yellow" {
		t.Errorf("Leaves mismatch: got %v", loaded.Leaves)
	}
	if loaded.Datamodel["restored"] != true {
		t.Errorf("Datamodel mismatch: got %v", loaded.Datamodel)
	}
}
