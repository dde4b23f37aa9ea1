package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PortalOS/backend/internal/catalog"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
	"github.com/GriffinCanCode/PortalOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

var (
	// ErrSuperseded indicates a newer attach or detach replaced this
	// attempt before it completed; its result was discarded.
	ErrSuperseded = errors.New("attempt superseded")

	// ErrUnknownContainer indicates no binding exists for the container.
	ErrUnknownContainer = errors.New("unknown container")

	// ErrUnknownScope indicates the scope is not in the catalog and no
	// URL was supplied.
	ErrUnknownScope = errors.New("scope not in catalog")
)

// Manager drives the host boundary state machine for every DOM container
// the shell owns: Idle -> Loading -> Mounted, with Errored reachable from
// Loading and Mounted, and Unmounting on the way back to Idle. Stale
// attempt results are identified by attempt ID and never applied.
type Manager struct {
	resolver    *remote.Resolver
	coordinator *remote.Coordinator
	catalog     *catalog.Catalog
	logger      *logging.Logger

	mu       sync.RWMutex
	bindings map[string]*Binding

	subsMu sync.RWMutex
	subs   map[string]chan Event
}

// NewManager creates a host boundary manager.
func NewManager(resolver *remote.Resolver, coordinator *remote.Coordinator, cat *catalog.Catalog, logger *logging.Logger) *Manager {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Manager{
		resolver:    resolver,
		coordinator: coordinator,
		catalog:     cat,
		logger:      logger,
		bindings:    make(map[string]*Binding),
		subs:        make(map[string]chan Event),
	}
}

// Attach asks the container to display the given remote, loading and
// mounting it. If the container currently shows a different remote, that
// remote is unmounted first; re-attaching the remote it already shows is
// a no-op. A remoteURL of "" falls back to the catalog.
func (m *Manager) Attach(ctx context.Context, containerID, scope, remoteURL string) error {
	if remoteURL == "" {
		entry, ok := m.catalog.Get(scope)
		if !ok {
			return fmt.Errorf("attach %q: %w", scope, ErrUnknownScope)
		}
		remoteURL = entry.URL
	}

	attempt := id.NewAttemptID().String()

	m.mu.Lock()
	b, ok := m.bindings[containerID]
	if !ok {
		b = &Binding{ContainerID: containerID, State: types.StateIdle}
		m.bindings[containerID] = b
	}
	// Re-attaching what the container already shows is a no-op; the
	// mount stays as it is
	if b.State == types.StateMounted && b.Scope == scope {
		m.mu.Unlock()
		return nil
	}
	prevScope := ""
	if b.Scope != "" && b.Scope != scope && (b.State == types.StateMounted || b.State == types.StateLoading) {
		prevScope = b.Scope
	}
	b.Scope = scope
	b.URL = remoteURL
	b.State = types.StateLoading
	b.Error = ""
	b.Attempt = attempt
	b.UpdatedAt = time.Now()
	snapshot := b.snapshot()
	m.mu.Unlock()

	m.emit(snapshot)

	// Tear down the previously displayed remote before the new one
	// takes over the container
	if prevScope != "" {
		if err := m.coordinator.Unmount(ctx, prevScope); err != nil {
			m.logger.Warn("Unmount of previous remote failed",
				zap.String("container_id", containerID),
				zap.String("scope", prevScope),
				zap.Error(err),
			)
		}
	}

	_, err := m.coordinator.LoadAndMount(ctx, remoteURL, scope, containerID)

	m.mu.Lock()
	cur := m.bindings[containerID]
	if cur == nil || cur.Attempt != attempt {
		m.mu.Unlock()
		// The binding moved on while we were loading; a successful
		// late mount must not stay visible
		if err == nil {
			if uerr := m.coordinator.Unmount(ctx, scope); uerr != nil {
				m.logger.Warn("Failed to dispose superseded mount",
					zap.String("scope", scope),
					zap.Error(uerr),
				)
			}
		}
		return fmt.Errorf("attach %q to %s: %w", scope, containerID, ErrSuperseded)
	}

	if err != nil {
		// A mount the coordinator already disposed as stale leaves the
		// boundary where the superseding operation put it
		if errors.Is(err, remote.ErrStaleMount) {
			m.mu.Unlock()
			return err
		}
		b.State = types.StateErrored
		b.Error = err.Error()
		b.UpdatedAt = time.Now()
		snapshot = b.snapshot()
		m.mu.Unlock()
		m.emit(snapshot)
		return err
	}

	b.State = types.StateMounted
	b.UpdatedAt = time.Now()
	snapshot = b.snapshot()
	m.mu.Unlock()
	m.emit(snapshot)
	return nil
}

// Detach unmounts whatever the container displays and returns it to
// Idle. Detaching an idle or unknown container is safe.
func (m *Manager) Detach(ctx context.Context, containerID string) error {
	m.mu.Lock()
	b, ok := m.bindings[containerID]
	if !ok || b.State == types.StateIdle {
		m.mu.Unlock()
		return nil
	}

	scope := b.Scope
	// Invalidate any in-flight attach for this container
	b.Attempt = id.NewAttemptID().String()
	b.State = types.StateUnmounting
	b.UpdatedAt = time.Now()
	snapshot := b.snapshot()
	m.mu.Unlock()

	m.emit(snapshot)

	err := m.coordinator.Unmount(ctx, scope)

	m.mu.Lock()
	b.State = types.StateIdle
	b.Error = ""
	b.UpdatedAt = time.Now()
	snapshot = b.snapshot()
	m.mu.Unlock()

	m.emit(snapshot)
	return err
}

// Retry re-runs the last requested attach for an errored container.
func (m *Manager) Retry(ctx context.Context, containerID string) error {
	m.mu.RLock()
	b, ok := m.bindings[containerID]
	if !ok || b.Scope == "" {
		m.mu.RUnlock()
		return fmt.Errorf("retry %s: %w", containerID, ErrUnknownContainer)
	}
	scope, url := b.Scope, b.URL
	m.mu.RUnlock()

	return m.Attach(ctx, containerID, scope, url)
}

// Get returns a snapshot of one container's binding.
func (m *Manager) Get(containerID string) (Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bindings[containerID]
	if !ok {
		return Binding{}, false
	}
	return b.snapshot(), true
}

// List returns snapshots of all bindings.
func (m *Manager) List() []Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b.snapshot())
	}
	return out
}

// Subscribe registers an event listener. The returned cancel function
// must be called to release it.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	id := uuid.New().String()
	ch := make(chan Event, 16)

	m.subsMu.Lock()
	m.subs[id] = ch
	m.subsMu.Unlock()

	return ch, func() {
		m.subsMu.Lock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
		m.subsMu.Unlock()
	}
}

func (m *Manager) emit(b Binding) {
	ev := Event{
		Type:        "state",
		ContainerID: b.ContainerID,
		Scope:       b.Scope,
		State:       b.State,
		Error:       b.Error,
		Attempt:     b.Attempt,
		Timestamp:   b.UpdatedAt,
	}

	m.subsMu.RLock()
	defer m.subsMu.RUnlock()

	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscribers drop events rather than block the host
		}
	}
}
