package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// Module names a remote must answer to. Bootstrap carries the full
// lifecycle contract; App is the bare render fallback.
const (
	ModuleBootstrap = "./bootstrap"
	ModuleApp       = "./App"
)

// ErrModuleNotFound is returned by Container.Get when the container does
// not expose the requested module.
var ErrModuleNotFound = errors.New("module not exposed by container")

// Loader fetches a remote's code container from a network location.
// Implementations are injected into the resolver so tests can substitute
// in-memory fakes for the network and script runtime.
type Loader interface {
	Fetch(ctx context.Context, url, scope string) (Container, error)
}

// Container is the capability surface a fetched code container exposes:
// a named module lookup, mirroring the get(name) contract remotes publish.
type Container interface {
	Get(ctx context.Context, name string) (*Module, error)
}

// Module is a resolved entry point. A bootstrap module carries Mount and
// Unmount; a bare render entry carries only Render.
type Module struct {
	Mount   types.MountFunc
	Unmount types.UnmountFunc
	Render  func(ctx context.Context, containerID string) error
}

// FetchError reports a failed container retrieval with the scope and URL
// that were being loaded.
type FetchError struct {
	Scope string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch remote %q from %s: %v", e.Scope, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
