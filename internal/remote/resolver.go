package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PortalOS/backend/internal/loader"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// EntryKind tags how a remote's entry point was resolved.
type EntryKind int

const (
	// EntryBootstrap is the full lifecycle contract: mount and unmount.
	EntryBootstrap EntryKind = iota
	// EntryBare is the degraded fallback: a render entry with no
	// teardown, unmountable by this host.
	EntryBare
)

// String returns the string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryBootstrap:
		return "bootstrap"
	case EntryBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Entry is the tagged result of entry point resolution.
type Entry struct {
	Kind    EntryKind
	Mount   types.MountFunc
	Unmount types.UnmountFunc
}

// Resolver loads remote code containers and resolves their entry points
// into registry records.
type Resolver struct {
	registry *Registry
	loader   loader.Loader
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	group    singleflight.Group
}

// NewResolver creates a resolver over a registry and a container loader.
func NewResolver(registry *Registry, ld loader.Loader, logger *logging.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		loader:   ld,
		logger:   logger,
	}
}

// WithMetrics attaches a metrics collector.
func (r *Resolver) WithMetrics(m *monitoring.Metrics) *Resolver {
	r.metrics = m
	return r
}

// Load returns the record for scope, fetching and resolving the remote's
// code container on first use. Concurrent first loads for the same scope
// share a single fetch; repeat calls hit the registry and perform no I/O.
func (r *Resolver) Load(ctx context.Context, remoteURL, scope string) (types.RemoteRecord, error) {
	if rec, ok := r.registry.Get(scope); ok {
		return rec, nil
	}

	result, err, _ := r.group.Do(scope, func() (interface{}, error) {
		// A concurrent caller may have stored the record while this
		// call waited its turn
		if rec, ok := r.registry.Get(scope); ok {
			return rec, nil
		}
		return r.fetchAndStore(ctx, remoteURL, scope)
	})
	if err != nil {
		return types.RemoteRecord{}, err
	}
	return result.(types.RemoteRecord), nil
}

func (r *Resolver) fetchAndStore(ctx context.Context, remoteURL, scope string) (types.RemoteRecord, error) {
	start := time.Now()

	container, err := r.loader.Fetch(ctx, remoteURL, scope)
	if err != nil {
		r.logger.Error("Remote fetch failed",
			zap.String("scope", scope),
			zap.String("url", remoteURL),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.RecordLoad(scope, "fetch_error", 0)
		}
		return types.RemoteRecord{}, err
	}

	entry, err := r.resolveEntry(ctx, container)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordLoad(scope, "resolve_error", 0)
		}
		return types.RemoteRecord{}, fmt.Errorf("resolve remote %q from %s: %w", scope, remoteURL, err)
	}

	if err := r.registry.Set(&types.RemoteRecord{
		Scope:    scope,
		URL:      remoteURL,
		Module:   container,
		Mount:    entry.Mount,
		Unmount:  entry.Unmount,
		LoadedAt: time.Now(),
	}); err != nil {
		return types.RemoteRecord{}, err
	}

	if r.metrics != nil {
		r.metrics.RecordLoad(scope, "ok", time.Since(start))
		r.metrics.SetRegistrySize(r.registry.Stats().TotalRemotes)
	}
	r.logger.Info("Remote loaded",
		zap.String("scope", scope),
		zap.String("url", remoteURL),
		zap.String("entry", entry.Kind.String()),
		zap.Duration("duration", time.Since(start)),
	)

	rec, _ := r.registry.Get(scope)
	return rec, nil
}

// resolveEntry prefers the bootstrap lifecycle contract and degrades to
// the bare render entry. The tagged result keeps the degraded mode
// explicit instead of burying it in error handling.
func (r *Resolver) resolveEntry(ctx context.Context, container loader.Container) (Entry, error) {
	mod, err := container.Get(ctx, loader.ModuleBootstrap)
	if err == nil {
		if mod.Mount == nil || mod.Unmount == nil {
			return Entry{}, fmt.Errorf("bootstrap module lacks mount/unmount functions")
		}
		return Entry{Kind: EntryBootstrap, Mount: mod.Mount, Unmount: mod.Unmount}, nil
	}
	if !errors.Is(err, loader.ErrModuleNotFound) {
		return Entry{}, err
	}

	if _, err := container.Get(ctx, loader.ModuleApp); err != nil {
		if errors.Is(err, loader.ErrModuleNotFound) {
			return Entry{}, ErrNoEntryPoint
		}
		return Entry{}, err
	}
	return Entry{Kind: EntryBare}, nil
}
