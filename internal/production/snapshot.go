// Package production provides the persistence, event-publishing, and
// visualization adapters a host wires into an interpreter.Interpreter via
// WithSnapshotHook (persistence/publishing) or by calling ExportDOT/
// ExportJSON directly against a document.Document (visualization).
//
// Grounded on the teacher's internal/production/persister.go (JSON/YAML
// file persisters), eventpublisher.go (channel publisher), and
// visualizer.go (DOT/JSON export), generalized from the teacher's
// MachineSnapshot/primitives.MachineConfig pair to document.Document plus
// a leaf/datamodel snapshot, and extended with a SQLite-backed persister
// grounded in agentflare-ai-agentml-go's memory/db.go.
package production

import "time"

// Snapshot is the serializable execution state of one chart instance at
// a point in time: its active leaf configuration and datamodel contents.
// The document itself is never part of a Snapshot — it is shared,
// immutable, and identified by Name alone; a Persister's Load caller is
// expected to already hold the matching document.
type Snapshot struct {
	ChartID   string         `json:"chartID" yaml:"chartID"`
	Leaves    []string       `json:"leaves" yaml:"leaves"`
	Datamodel map[string]any `json:"datamodel" yaml:"datamodel"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
}

// EventRecord bundles a published event name/payload with the chart id
// and transition that produced it, for EventPublisher consumers.
type EventRecord struct {
	ChartID    string    `json:"chartID" yaml:"chartID"`
	EventName  string    `json:"eventName" yaml:"eventName"`
	Transition string    `json:"transition" yaml:"transition"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}
