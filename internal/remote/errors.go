package remote

import "errors"

var (
	// ErrNotLoaded indicates a mount was requested for a scope that was
	// never loaded. Load must complete before Mount.
	ErrNotLoaded = errors.New("remote not loaded")

	// ErrNoLifecycle indicates the remote exposed only a bare render
	// entry and cannot be mounted or unmounted by the coordinator.
	ErrNoLifecycle = errors.New("remote exposes no lifecycle contract")

	// ErrAlreadyMounted indicates the remote is already mounted into a
	// container; it must be unmounted before mounting again.
	ErrAlreadyMounted = errors.New("remote already mounted")

	// ErrStaleMount indicates a mount resolved after an unmount (or a
	// newer mount) superseded it; the resolved handle was disposed.
	ErrStaleMount = errors.New("mount superseded before completion")

	// ErrScopeExists indicates an attempt to overwrite an existing
	// registry record's resolved module.
	ErrScopeExists = errors.New("scope already registered")

	// ErrNoEntryPoint indicates a fetched container exposes neither a
	// bootstrap nor a bare render entry.
	ErrNoEntryPoint = errors.New("container exposes no known entry point")
)
