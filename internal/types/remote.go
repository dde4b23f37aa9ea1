package types

import (
	"context"
	"time"
)

// MountState represents host boundary lifecycle states
type MountState string

const (
	StateIdle       MountState = "idle"
	StateLoading    MountState = "loading"
	StateMounted    MountState = "mounted"
	StateUnmounting MountState = "unmounting"
	StateErrored    MountState = "errored"
)

// MountHandle is the opaque value a remote's mount function returns.
// It is passed back, unchanged, to the remote's unmount function.
type MountHandle interface{}

// MountFunc mounts a remote into the DOM container identified by containerID.
type MountFunc func(ctx context.Context, containerID string) (MountHandle, error)

// UnmountFunc reverses a prior mount using its handle.
type UnmountFunc func(ctx context.Context, handle MountHandle) error

// RemoteRecord tracks a fetched remote and its current mount state.
// One record exists per scope for the lifetime of the process; records
// are never deleted, only their mount state toggles.
type RemoteRecord struct {
	Scope  string `json:"scope"`
	URL    string `json:"url"`
	Module interface{} `json:"-"` // resolved code container, immutable once set

	// Lifecycle contract, set once at load time. Both nil for a
	// degraded (bare entry) remote that cannot be cleanly unmounted.
	Mount   MountFunc   `json:"-"`
	Unmount UnmountFunc `json:"-"`

	// MountHandle and ContainerID transition together: both set while
	// the remote is actively mounted, both nil/empty otherwise.
	MountHandle MountHandle `json:"-"`
	ContainerID string      `json:"container_id,omitempty"`

	LoadedAt time.Time `json:"loaded_at"`
}

// HasLifecycle reports whether the remote exposed a full bootstrap contract.
func (r *RemoteRecord) HasLifecycle() bool {
	return r.Mount != nil && r.Unmount != nil
}

// Mounted reports whether the remote is currently mounted into a container.
func (r *RemoteRecord) Mounted() bool {
	return r.MountHandle != nil
}

// RegistryStats contains remote registry statistics
type RegistryStats struct {
	TotalRemotes int `json:"total_remotes"`
	Mounted      int `json:"mounted"`
	Degraded     int `json:"degraded"`
}
