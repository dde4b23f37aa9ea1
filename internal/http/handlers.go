package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PortalOS/backend/internal/catalog"
	"github.com/GriffinCanCode/PortalOS/backend/internal/host"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
	"github.com/GriffinCanCode/PortalOS/backend/internal/utils"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry    *remote.Registry
	resolver    *remote.Resolver
	coordinator *remote.Coordinator
	catalog     *catalog.Catalog
	host        *host.Manager
}

// NewHandlers creates a new handler set
func NewHandlers(
	registry *remote.Registry,
	resolver *remote.Resolver,
	coordinator *remote.Coordinator,
	cat *catalog.Catalog,
	hostMgr *host.Manager,
) *Handlers {
	return &Handlers{
		registry:    registry,
		resolver:    resolver,
		coordinator: coordinator,
		catalog:     cat,
		host:        hostMgr,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Portal Host (Go)",
		"version": "0.2.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"registry": h.registry.Stats(),
		"catalog":  gin.H{"remotes": h.catalog.Len()},
		"bindings": len(h.host.List()),
	})
}

// ListRemotes lists loaded remotes alongside the catalog
func (h *Handlers) ListRemotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"remotes": h.registry.List(),
		"catalog": h.catalog.List(),
		"stats":   h.registry.Stats(),
	})
}

// GetRemote returns a single loaded remote
func (h *Handlers) GetRemote(c *gin.Context) {
	scope := c.Param("scope")

	if err := utils.ValidateScope(scope, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.registry.Get(scope)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "remote not loaded"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// LoadRemote fetches and registers a remote's container
func (h *Handlers) LoadRemote(c *gin.Context) {
	scope := c.Param("scope")

	if err := utils.ValidateScope(scope, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// An empty body is fine; the URL can then come from the catalog.
	var req types.LoadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	remoteURL := req.URL
	if remoteURL == "" {
		entry, ok := h.catalog.Get(scope)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "scope not in catalog and no url provided"})
			return
		}
		remoteURL = entry.URL
	}

	if err := utils.ValidateRemoteURL(remoteURL, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.resolver.Load(c.Request.Context(), remoteURL, scope)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":     rec.Scope,
		"url":       rec.URL,
		"lifecycle": rec.HasLifecycle(),
		"loaded_at": rec.LoadedAt,
	})
}

// MountRemote mounts a loaded remote into a container
func (h *Handlers) MountRemote(c *gin.Context) {
	scope := c.Param("scope")

	if err := utils.ValidateScope(scope, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req types.MountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateContainerID(req.ContainerID, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.coordinator.Mount(c.Request.Context(), scope, req.ContainerID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":        scope,
		"container_id": req.ContainerID,
		"mounted":      true,
	})
}

// UnmountRemote unmounts a remote. Unmounting an unmounted or unknown
// scope succeeds; the operation is idempotent.
func (h *Handlers) UnmountRemote(c *gin.Context) {
	scope := c.Param("scope")

	if err := utils.ValidateScope(scope, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.coordinator.Unmount(c.Request.Context(), scope); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":   scope,
		"mounted": false,
	})
}

// ListBindings lists container bindings managed by the host
func (h *Handlers) ListBindings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"bindings": h.host.List(),
	})
}

// GetBinding returns the binding for a container
func (h *Handlers) GetBinding(c *gin.Context) {
	containerID := c.Param("id")

	if err := utils.ValidateContainerID(containerID, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, ok := h.host.Get(containerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown container"})
		return
	}

	c.JSON(http.StatusOK, binding)
}

// AttachContainer binds a container to a scope and mounts it
func (h *Handlers) AttachContainer(c *gin.Context) {
	containerID := c.Param("id")

	if err := utils.ValidateContainerID(containerID, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req types.AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateScope(req.Scope, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRemoteURL(req.URL, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.host.Attach(c.Request.Context(), containerID, req.Scope, req.URL); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	binding, _ := h.host.Get(containerID)
	c.JSON(http.StatusOK, binding)
}

// DetachContainer unmounts and releases a container binding
func (h *Handlers) DetachContainer(c *gin.Context) {
	containerID := c.Param("id")

	if err := utils.ValidateContainerID(containerID, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.host.Detach(c.Request.Context(), containerID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"container_id": containerID,
		"detached":     true,
	})
}

// RetryContainer re-runs a failed attach for a container
func (h *Handlers) RetryContainer(c *gin.Context) {
	containerID := c.Param("id")

	if err := utils.ValidateContainerID(containerID, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.host.Retry(c.Request.Context(), containerID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	binding, _ := h.host.Get(containerID)
	c.JSON(http.StatusOK, binding)
}
