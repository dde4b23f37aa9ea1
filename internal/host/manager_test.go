package host

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PortalOS/backend/internal/catalog"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/loader"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

type fakeContainer struct {
	modules map[string]*loader.Module
}

func (c *fakeContainer) Get(ctx context.Context, name string) (*loader.Module, error) {
	mod, ok := c.modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q: %w", name, loader.ErrModuleNotFound)
	}
	return mod, nil
}

// fakeLoader serves per-scope containers; scopes without one fail.
type fakeLoader struct {
	containers map[string]loader.Container
	gate       chan struct{} // when set, Fetch waits for it to close
}

func (l *fakeLoader) Fetch(ctx context.Context, url, scope string) (loader.Container, error) {
	if l.gate != nil {
		<-l.gate
	}
	c, ok := l.containers[scope]
	if !ok {
		return nil, &loader.FetchError{Scope: scope, URL: url, Err: errors.New("not found")}
	}
	return c, nil
}

func lifecycleContainer() loader.Container {
	return &fakeContainer{modules: map[string]*loader.Module{
		loader.ModuleBootstrap: {
			Mount: func(ctx context.Context, containerID string) (types.MountHandle, error) {
				return "handle-" + containerID, nil
			},
			Unmount: func(ctx context.Context, handle types.MountHandle) error {
				return nil
			},
		},
	}}
}

func newTestManager(ld loader.Loader, cat *catalog.Catalog) (*Manager, *remote.Registry) {
	logger := logging.NewNop()
	reg := remote.NewRegistry()
	resolver := remote.NewResolver(reg, ld, logger)
	coord := remote.NewCoordinator(reg, resolver, logger)
	return NewManager(resolver, coord, cat, logger), reg
}

func twoRemoteLoader() *fakeLoader {
	return &fakeLoader{containers: map[string]loader.Container{
		"dashboard": lifecycleContainer(),
		"settings":  lifecycleContainer(),
	}}
}

func TestManagerAttachDetach(t *testing.T) {
	mgr, reg := newTestManager(twoRemoteLoader(), nil)
	ctx := context.Background()

	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))

	b, ok := mgr.Get("slot-a")
	require.True(t, ok)
	assert.Equal(t, types.StateMounted, b.State)
	assert.Equal(t, "dashboard", b.Scope)

	rec, _ := reg.Get("dashboard")
	assert.True(t, rec.Mounted())
	assert.Equal(t, "slot-a", rec.ContainerID)

	require.NoError(t, mgr.Detach(ctx, "slot-a"))

	b, _ = mgr.Get("slot-a")
	assert.Equal(t, types.StateIdle, b.State)
	rec, _ = reg.Get("dashboard")
	assert.False(t, rec.Mounted())
}

func TestManagerDetachIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)
	ctx := context.Background()

	// Unknown container
	require.NoError(t, mgr.Detach(ctx, "slot-a"))

	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))
	require.NoError(t, mgr.Detach(ctx, "slot-a"))
	require.NoError(t, mgr.Detach(ctx, "slot-a"))
}

func TestManagerAttachSwapsRemotes(t *testing.T) {
	mgr, reg := newTestManager(twoRemoteLoader(), nil)
	ctx := context.Background()

	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))
	require.NoError(t, mgr.Attach(ctx, "slot-a", "settings", "http://remotes.test/s.js"))

	// The old remote was unmounted before the new one took the slot
	dash, _ := reg.Get("dashboard")
	assert.False(t, dash.Mounted())

	set, _ := reg.Get("settings")
	assert.True(t, set.Mounted())
	assert.Equal(t, "slot-a", set.ContainerID)

	b, _ := mgr.Get("slot-a")
	assert.Equal(t, "settings", b.Scope)
	assert.Equal(t, types.StateMounted, b.State)
}

func TestManagerReattachSameScopeIsNoop(t *testing.T) {
	var mounts, unmounts int
	ld := &fakeLoader{containers: map[string]loader.Container{
		"dashboard": &fakeContainer{modules: map[string]*loader.Module{
			loader.ModuleBootstrap: {
				Mount: func(ctx context.Context, containerID string) (types.MountHandle, error) {
					mounts++
					return "handle-" + containerID, nil
				},
				Unmount: func(ctx context.Context, handle types.MountHandle) error {
					unmounts++
					return nil
				},
			},
		}},
	}}
	mgr, reg := newTestManager(ld, nil)
	ctx := context.Background()

	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))
	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))

	// The second attach left the existing mount alone
	b, _ := mgr.Get("slot-a")
	assert.Equal(t, types.StateMounted, b.State)
	assert.Equal(t, 1, mounts)
	assert.Equal(t, 0, unmounts)

	rec, _ := reg.Get("dashboard")
	assert.True(t, rec.Mounted())
	assert.Equal(t, "slot-a", rec.ContainerID)
}

func TestManagerAttachUsesCatalog(t *testing.T) {
	cat, err := catalog.Parse([]byte(
		"remotes:\n  - scope: dashboard\n    url: http://catalog.test/d.js\n"))
	require.NoError(t, err)

	mgr, reg := newTestManager(twoRemoteLoader(), cat)

	require.NoError(t, mgr.Attach(context.Background(), "slot-a", "dashboard", ""))

	rec, _ := reg.Get("dashboard")
	assert.Equal(t, "http://catalog.test/d.js", rec.URL)
}

func TestManagerAttachUnknownScope(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)

	err := mgr.Attach(context.Background(), "slot-a", "mystery", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestManagerAttachFailureAndRetry(t *testing.T) {
	ld := &fakeLoader{containers: map[string]loader.Container{}}
	mgr, _ := newTestManager(ld, nil)
	ctx := context.Background()

	err := mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js")
	require.Error(t, err)

	b, ok := mgr.Get("slot-a")
	require.True(t, ok)
	assert.Equal(t, types.StateErrored, b.State)
	assert.NotEmpty(t, b.Error)

	// The remote comes back; retry reuses the recorded scope and URL
	ld.containers["dashboard"] = lifecycleContainer()
	require.NoError(t, mgr.Retry(ctx, "slot-a"))

	b, _ = mgr.Get("slot-a")
	assert.Equal(t, types.StateMounted, b.State)
	assert.Empty(t, b.Error)
}

func TestManagerRetryUnknownContainer(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)

	err := mgr.Retry(context.Background(), "slot-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownContainer)
}

func TestManagerDetachDuringLoadSupersedesAttach(t *testing.T) {
	ld := twoRemoteLoader()
	ld.gate = make(chan struct{})
	mgr, reg := newTestManager(ld, nil)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		result <- mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js")
	}()

	// Wait for the attach to report Loading, then detach while the
	// fetch is still suspended
	require.Eventually(t, func() bool {
		b, ok := mgr.Get("slot-a")
		return ok && b.State == types.StateLoading
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, mgr.Detach(ctx, "slot-a"))

	close(ld.gate)
	err := <-result
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSuperseded)

	// The container stays idle and the late mount was not applied
	b, _ := mgr.Get("slot-a")
	assert.Equal(t, types.StateIdle, b.State)

	rec, ok := reg.Get("dashboard")
	if ok {
		assert.False(t, rec.Mounted())
	}
}

func TestManagerSubscribeReceivesTransitions(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)

	events, cancel := mgr.Subscribe()
	defer cancel()

	require.NoError(t, mgr.Attach(context.Background(), "slot-a", "dashboard", "http://remotes.test/d.js"))

	var states []types.MountState
	for len(states) < 2 {
		select {
		case ev := <-events:
			states = append(states, ev.State)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for events, got %v", states)
		}
	}

	assert.Equal(t, types.StateLoading, states[0])
	assert.Equal(t, types.StateMounted, states[1])
}

func TestManagerSubscribeCancel(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)

	events, cancel := mgr.Subscribe()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// Emitting after cancel must not panic
	require.NoError(t, mgr.Attach(context.Background(), "slot-a", "dashboard", "http://remotes.test/d.js"))
}

func TestManagerList(t *testing.T) {
	mgr, _ := newTestManager(twoRemoteLoader(), nil)
	ctx := context.Background()

	assert.Empty(t, mgr.List())

	require.NoError(t, mgr.Attach(ctx, "slot-a", "dashboard", "http://remotes.test/d.js"))
	require.NoError(t, mgr.Attach(ctx, "slot-b", "settings", "http://remotes.test/s.js"))

	assert.Len(t, mgr.List(), 2)
}
