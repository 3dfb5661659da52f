package production

import "context"

// Persister saves and loads Snapshots, keyed by chart id. Implementations
// provided here: JSONPersister, YAMLPersister (file-based, grounded on
// the teacher), and SQLitePersister (grounded on agentml-go's sqlite
// registry, build-tag gated on cgo availability).
type Persister interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, chartID string) (Snapshot, error)
}
