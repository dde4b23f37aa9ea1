package host

import (
	"time"

	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

// Event is a host boundary state transition, streamed to shell clients.
type Event struct {
	Type        string           `json:"type"`
	ContainerID string           `json:"container_id"`
	Scope       string           `json:"scope,omitempty"`
	State       types.MountState `json:"state"`
	Error       string           `json:"error,omitempty"`
	Attempt     string           `json:"attempt,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Binding is the host boundary's view of one DOM container: which remote
// it should display and where in the lifecycle that remote currently is.
type Binding struct {
	ContainerID string           `json:"container_id"`
	Scope       string           `json:"scope,omitempty"`
	URL         string           `json:"url,omitempty"`
	State       types.MountState `json:"state"`
	Error       string           `json:"error,omitempty"`
	Attempt     string           `json:"attempt,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (b *Binding) snapshot() Binding {
	return *b
}
