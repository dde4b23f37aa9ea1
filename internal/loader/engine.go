package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// Engine loads remote entry bundles into an embedded JavaScript runtime
// and exposes the container contract they register under their scope name.
type Engine struct {
	fetcher Fetcher
	logger  *logging.Logger
}

// NewEngine creates a container engine on top of a bundle fetcher.
func NewEngine(fetcher Fetcher, logger *logging.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Fetch downloads and evaluates a remote entry bundle, returning the
// container it registered under the scope's global name.
func (e *Engine) Fetch(ctx context.Context, url, scope string) (Container, error) {
	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{Scope: scope, URL: url, Err: err}
	}

	vm := goja.New()
	c := &jsContainer{
		vm:     vm,
		scope:  scope,
		logger: e.logger,
	}
	c.setupGlobals()

	stop := c.watchInterrupt(ctx)
	_, err = vm.RunScript(url, string(body))
	stop()
	if err != nil {
		return nil, &FetchError{Scope: scope, URL: url, Err: fmt.Errorf("evaluate bundle: %w", err)}
	}

	// The bundle registers its container under globalThis[scope]
	global := vm.Get(scope)
	if global == nil || goja.IsUndefined(global) || goja.IsNull(global) {
		return nil, &FetchError{Scope: scope, URL: url, Err: fmt.Errorf("bundle did not register container %q", scope)}
	}

	obj := global.ToObject(vm)
	get, ok := goja.AssertFunction(obj.Get("get"))
	if !ok {
		return nil, &FetchError{Scope: scope, URL: url, Err: fmt.Errorf("container %q has no get capability", scope)}
	}
	c.get = get

	// Initialize the share scope when the container supports it
	if init, ok := goja.AssertFunction(obj.Get("init")); ok {
		if _, err := init(obj, vm.NewObject()); err != nil {
			e.logger.Warn("Container init failed",
				zap.String("scope", scope),
				zap.Error(err),
			)
		}
	}

	return c, nil
}

// jsContainer wraps a loaded container object. The underlying VM is not
// safe for concurrent use, so every call into it holds mu.
type jsContainer struct {
	vm     *goja.Runtime
	scope  string
	get    goja.Callable
	logger *logging.Logger
	mu     sync.Mutex
}

// Get resolves a named module from the container.
func (c *jsContainer) Get(ctx context.Context, name string) (*Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stop := c.watchInterrupt(ctx)
	defer stop()

	factoryVal, err := c.get(goja.Undefined(), c.vm.ToValue(name))
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, ErrModuleNotFound)
	}

	factory, ok := goja.AssertFunction(factoryVal)
	if !ok {
		return nil, fmt.Errorf("container %q returned a non-factory for %q", c.scope, name)
	}

	modVal, err := factory(goja.Undefined())
	if err != nil {
		return nil, fmt.Errorf("instantiate module %q: %w", name, err)
	}
	if modVal == nil || goja.IsUndefined(modVal) || goja.IsNull(modVal) {
		return nil, fmt.Errorf("module %q resolved to nothing", name)
	}

	return c.buildModule(modVal), nil
}

// buildModule extracts the lifecycle surface a module object exposes.
func (c *jsContainer) buildModule(val goja.Value) *Module {
	mod := &Module{}
	obj := val.ToObject(c.vm)

	mount, hasMount := goja.AssertFunction(obj.Get("mount"))
	unmount, hasUnmount := goja.AssertFunction(obj.Get("unmount"))
	if hasMount && hasUnmount {
		mod.Mount = c.mountFunc(mount)
		mod.Unmount = c.unmountFunc(unmount)
	}

	if render, ok := goja.AssertFunction(obj.Get("render")); ok {
		mod.Render = c.renderFunc(render)
	} else if bare, ok := goja.AssertFunction(val); ok {
		// Bare entry modules may simply export a render function
		mod.Render = c.renderFunc(bare)
	}

	return mod
}

func (c *jsContainer) mountFunc(fn goja.Callable) types.MountFunc {
	return func(ctx context.Context, containerID string) (types.MountHandle, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		stop := c.watchInterrupt(ctx)
		defer stop()

		v, err := fn(goja.Undefined(), c.vm.ToValue(containerID))
		if err != nil {
			return nil, err
		}
		return &jsHandle{value: v}, nil
	}
}

func (c *jsContainer) unmountFunc(fn goja.Callable) types.UnmountFunc {
	return func(ctx context.Context, handle types.MountHandle) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		stop := c.watchInterrupt(ctx)
		defer stop()

		var v goja.Value
		if h, ok := handle.(*jsHandle); ok {
			v = h.value
		} else {
			v = c.vm.ToValue(handle)
		}

		_, err := fn(goja.Undefined(), v)
		return err
	}
}

func (c *jsContainer) renderFunc(fn goja.Callable) func(ctx context.Context, containerID string) error {
	return func(ctx context.Context, containerID string) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		stop := c.watchInterrupt(ctx)
		defer stop()

		_, err := fn(goja.Undefined(), c.vm.ToValue(containerID))
		return err
	}
}

// jsHandle keeps the remote's mount result opaque to the host while
// preserving its identity for the eventual unmount call.
type jsHandle struct {
	value goja.Value
}

// setupGlobals configures the runtime the way remote bundles expect:
// a console wired into the host logger and inert timers.
func (c *jsContainer) setupGlobals() {
	console := c.vm.NewObject()
	console.Set("log", c.makeConsoleFunc("info"))
	console.Set("info", c.makeConsoleFunc("info"))
	console.Set("warn", c.makeConsoleFunc("warn"))
	console.Set("error", c.makeConsoleFunc("error"))
	c.vm.Set("console", console)

	c.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	c.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

func (c *jsContainer) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		fields := []zap.Field{zap.String("remote", c.scope)}
		switch level {
		case "warn":
			c.logger.Warn(msg, fields...)
		case "error":
			c.logger.Error(msg, fields...)
		default:
			c.logger.Info(msg, fields...)
		}
		return goja.Undefined()
	}
}

// watchInterrupt aborts VM execution when ctx is cancelled. The returned
// stop function must be called once the VM call completes.
func (c *jsContainer) watchInterrupt(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()
	return func() {
		close(done)
		c.vm.ClearInterrupt()
	}
}
