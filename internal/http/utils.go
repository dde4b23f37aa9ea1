package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/PortalOS/backend/internal/host"
	"github.com/GriffinCanCode/PortalOS/backend/internal/loader"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fetchErr *loader.FetchError

	switch {
	case errors.Is(err, remote.ErrNotLoaded),
		errors.Is(err, host.ErrUnknownContainer),
		errors.Is(err, host.ErrUnknownScope):
		return http.StatusNotFound
	case errors.Is(err, remote.ErrAlreadyMounted),
		errors.Is(err, remote.ErrStaleMount),
		errors.Is(err, remote.ErrScopeExists),
		errors.Is(err, host.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, remote.ErrNoLifecycle):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr),
		errors.Is(err, remote.ErrNoEntryPoint):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
