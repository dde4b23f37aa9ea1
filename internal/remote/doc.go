// Package remote implements the load and mount lifecycle for
// micro-frontend remotes.
//
// Registry is the single source of truth for fetched remotes and their
// mount state. Resolver loads a remote's code container exactly once
// per scope, collapsing concurrent first loads into a single fetch and
// resolving the bootstrap-or-bare entry point. Coordinator drives mount
// and unmount against the registry, using per-scope generation counters
// to detect and dispose of mounts that resolve after they have been
// superseded.
package remote
