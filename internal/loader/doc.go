// Package loader fetches remote entry bundles over HTTP and evaluates
// them in an embedded JavaScript runtime.
//
// The package is split along the container contract: Fetcher retrieves
// raw bundle bytes with retry, compression, and circuit breaker
// protection; Engine evaluates a bundle and exposes the get/init
// container the bundle registers under its scope's global name. The
// resolver consumes only the Loader and Container interfaces, so tests
// substitute in-memory fakes for both the network and the runtime.
package loader
