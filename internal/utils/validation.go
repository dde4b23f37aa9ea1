package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// Input limits
const (
	MaxScopeLength       = 128
	MaxContainerIDLength = 256
	MaxURLLength         = 2048
)

// ValidateScope checks a remote scope name. Scopes are identifiers the
// remote bundle exposes as a global, so they must be safe to use as one.
func ValidateScope(scope string, required bool) error {
	if scope == "" {
		if required {
			return fmt.Errorf("scope is required")
		}
		return nil
	}
	if len(scope) > MaxScopeLength {
		return fmt.Errorf("scope exceeds %d characters", MaxScopeLength)
	}
	for i, r := range scope {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r == '$' {
			continue
		}
		if i > 0 && (r >= '0' && r <= '9' || r == '-') {
			continue
		}
		return fmt.Errorf("scope contains invalid character %q", r)
	}
	return nil
}

// ValidateContainerID checks a mount container identifier.
func ValidateContainerID(id string, required bool) error {
	if id == "" {
		if required {
			return fmt.Errorf("container_id is required")
		}
		return nil
	}
	if len(id) > MaxContainerIDLength {
		return fmt.Errorf("container_id exceeds %d characters", MaxContainerIDLength)
	}
	if strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf("container_id contains whitespace")
	}
	return nil
}

// ValidateRemoteURL checks a remote entry URL. Only http and https
// schemes are accepted; anything else cannot carry a bundle.
func ValidateRemoteURL(raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("url is required")
		}
		return nil
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("url exceeds %d characters", MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme %q not supported", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}
