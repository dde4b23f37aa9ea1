package types

// LoadRequest asks the host to fetch a remote's code container.
type LoadRequest struct {
	URL string `json:"url,omitempty"`
}

// MountRequest asks the host to mount a loaded remote.
type MountRequest struct {
	ContainerID string `json:"container_id" binding:"required"`
}

// AttachRequest binds a container to a remote scope.
type AttachRequest struct {
	Scope string `json:"scope" binding:"required"`
	URL   string `json:"url,omitempty"`
}

// WSMessage represents an inbound WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}
