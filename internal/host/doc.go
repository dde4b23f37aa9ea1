// Package host owns the shell-facing mount boundary: which remote each
// container displays, the Idle/Loading/Mounted/Errored state machine,
// and the event stream the shell subscribes to.
//
// The manager tags every attach with an attempt identifier so results
// that arrive after a newer attach or a detach are discarded rather
// than applied to a container that has moved on.
package host
