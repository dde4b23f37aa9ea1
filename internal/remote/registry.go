package remote

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// Registry is the single source of truth for which remotes have been
// fetched and their current mount state. Keys are append-only: a record
// is never deleted once stored, only its mount state toggles. The
// registry is a constructed service object rather than package state so
// tests get fresh instances.
//
// Records are handed out by value: the stored pointers never escape the
// lock, so mount-state writes and caller reads cannot race.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*types.RemoteRecord
}

// NewRegistry creates an empty remote registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*types.RemoteRecord),
	}
}

// Get retrieves a snapshot of the record for a scope.
func (r *Registry) Get(scope string) (types.RemoteRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[scope]
	if !ok {
		return types.RemoteRecord{}, false
	}
	return *rec, true
}

// Set inserts a new record and takes ownership of it; the caller must
// not touch rec afterwards. A scope's resolved module is immutable, so
// inserting over an existing record is rejected.
func (r *Registry) Set(rec *types.RemoteRecord) error {
	if rec.Scope == "" {
		return fmt.Errorf("record scope cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.Scope]; exists {
		return fmt.Errorf("%w: %s", ErrScopeExists, rec.Scope)
	}
	r.records[rec.Scope] = rec
	return nil
}

// SetMounted records an active mount. MountHandle and ContainerID
// transition together.
func (r *Registry) SetMounted(scope string, handle types.MountHandle, containerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[scope]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, scope)
	}
	rec.MountHandle = handle
	rec.ContainerID = containerID
	return nil
}

// ClearMount clears a record's mount state and returns the handle that
// was active, if any. Clearing an unmounted record is a no-op.
func (r *Registry) ClearMount(scope string) (types.MountHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[scope]
	if !ok || rec.MountHandle == nil {
		return nil, false
	}

	handle := rec.MountHandle
	rec.MountHandle = nil
	rec.ContainerID = ""
	return handle, true
}

// List returns snapshots of all records.
func (r *Registry) List() []types.RemoteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.RemoteRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out
}

// Stats returns registry statistics.
func (r *Registry) Stats() types.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := types.RegistryStats{TotalRemotes: len(r.records)}
	for _, rec := range r.records {
		if rec.Mounted() {
			stats.Mounted++
		}
		if !rec.HasLifecycle() {
			stats.Degraded++
		}
	}
	return stats
}
