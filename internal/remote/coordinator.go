package remote

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// Coordinator drives remote mount and unmount lifecycle against the
// registry. Each scope carries a generation counter; any unmount (or
// newer mount) advances it, so a mount that resolves late is detected,
// disposed of, and never left dangling in a container.
type Coordinator struct {
	registry *Registry
	resolver *Resolver
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu   sync.Mutex
	gens map[string]uint64

	// mountResolved, when non-nil, runs after the remote's mount
	// function returns and before the commit section. Test seam for
	// interleaving an unmount at that exact point.
	mountResolved func(scope string)
}

// NewCoordinator creates a mount coordinator.
func NewCoordinator(registry *Registry, resolver *Resolver, logger *logging.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		resolver: resolver,
		logger:   logger,
		gens:     make(map[string]uint64),
	}
}

// WithMetrics attaches a metrics collector.
func (c *Coordinator) WithMetrics(m *monitoring.Metrics) *Coordinator {
	c.metrics = m
	return c
}

// Mount invokes the remote's mount function with the container
// identifier and records the resulting handle. The record is not
// mutated on failure.
func (c *Coordinator) Mount(ctx context.Context, scope, containerID string) (types.MountHandle, error) {
	rec, ok := c.registry.Get(scope)
	if !ok {
		return nil, fmt.Errorf("mount %q: %w", scope, ErrNotLoaded)
	}
	if !rec.HasLifecycle() {
		return nil, fmt.Errorf("mount %q: %w", scope, ErrNoLifecycle)
	}

	c.mu.Lock()
	if cur, ok := c.registry.Get(scope); ok && cur.Mounted() {
		c.mu.Unlock()
		return nil, fmt.Errorf("mount %q: %w", scope, ErrAlreadyMounted)
	}
	c.gens[scope]++
	gen := c.gens[scope]
	c.mu.Unlock()

	// The remote's mount function may suspend on its own setup work
	handle, err := rec.Mount(ctx, containerID)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordMount(scope, "error")
		}
		return nil, fmt.Errorf("mount %q into %s: %w", scope, containerID, err)
	}

	if c.mountResolved != nil {
		c.mountResolved(scope)
	}

	// Stale check and commit happen under one lock acquisition so an
	// unmount cannot slip between them
	c.mu.Lock()
	stale := c.gens[scope] != gen
	var commitErr error
	if !stale {
		commitErr = c.registry.SetMounted(scope, handle, containerID)
	}
	c.mu.Unlock()

	if stale {
		// An unmount or newer mount raced in while we were suspended;
		// dispose of the fresh handle instead of letting it dangle
		if derr := rec.Unmount(ctx, handle); derr != nil {
			c.logger.Warn("Failed to dispose stale mount",
				zap.String("scope", scope),
				zap.String("container_id", containerID),
				zap.Error(derr),
			)
		}
		if c.metrics != nil {
			c.metrics.RecordMount(scope, "stale")
		}
		return nil, fmt.Errorf("mount %q into %s: %w", scope, containerID, ErrStaleMount)
	}
	if commitErr != nil {
		return nil, commitErr
	}

	if c.metrics != nil {
		c.metrics.RecordMount(scope, "ok")
		c.metrics.SetActiveMounts(c.registry.Stats().Mounted)
	}
	c.logger.Info("Remote mounted",
		zap.String("scope", scope),
		zap.String("container_id", containerID),
	)
	return handle, nil
}

// Unmount tears down an active mount. Unmounting a scope that was never
// loaded or never mounted is a safe no-op. Bookkeeping is cleared even
// when the remote's own unmount function fails, so the scope stays
// mountable; the failure is still reported.
func (c *Coordinator) Unmount(ctx context.Context, scope string) error {
	rec, ok := c.registry.Get(scope)

	// Generation bump and mount-state clear are atomic with respect to
	// a mount's stale check; an in-flight mount either sees the new
	// generation or its handle is cleared here
	c.mu.Lock()
	c.gens[scope]++
	handle, active := c.registry.ClearMount(scope)
	c.mu.Unlock()

	if !ok || !active {
		return nil
	}

	var err error
	if rec.Unmount != nil {
		err = rec.Unmount(ctx, handle)
	}

	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordUnmount(scope, status)
		c.metrics.SetActiveMounts(c.registry.Stats().Mounted)
	}

	if err != nil {
		c.logger.Error("Remote unmount failed, bookkeeping cleared",
			zap.String("scope", scope),
			zap.Error(err),
		)
		return fmt.Errorf("unmount %q: %w", scope, err)
	}

	c.logger.Info("Remote unmounted", zap.String("scope", scope))
	return nil
}

// LoadAndMount composes Load and Mount.
func (c *Coordinator) LoadAndMount(ctx context.Context, remoteURL, scope, containerID string) (types.MountHandle, error) {
	if _, err := c.resolver.Load(ctx, remoteURL, scope); err != nil {
		return nil, err
	}
	return c.Mount(ctx, scope, containerID)
}
