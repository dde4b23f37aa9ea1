// Package catalog loads the deployment's remote manifest: the mapping
// from remote scopes to entry bundle URLs.
package catalog
