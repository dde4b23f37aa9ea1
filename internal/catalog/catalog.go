package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

// Remote describes one entry in the host's application registry: where a
// remote's code container lives and how the shell should present it.
type Remote struct {
	Scope   string `yaml:"scope" json:"scope"`
	URL     string `yaml:"url" json:"url"`
	Title   string `yaml:"title" json:"title,omitempty"`
	Version string `yaml:"version" json:"version,omitempty"`
}

// Catalog is the read-only manifest of known remotes. It is supplied by
// the deployment, not owned by the mount core; the core only consumes
// scope and URL from it.
type Catalog struct {
	mu      sync.RWMutex
	remotes map[string]Remote
	order   []string
}

type manifest struct {
	Remotes []Remote `yaml:"remotes"`
}

// LoadFile reads a YAML manifest from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{remotes: make(map[string]Remote, len(m.Remotes))}
	for _, r := range m.Remotes {
		if r.Scope == "" {
			return nil, fmt.Errorf("catalog entry missing scope")
		}
		if r.URL == "" {
			return nil, fmt.Errorf("catalog entry %q missing url", r.Scope)
		}
		if _, dup := c.remotes[r.Scope]; dup {
			return nil, fmt.Errorf("catalog entry %q duplicated", r.Scope)
		}
		c.remotes[r.Scope] = r
		c.order = append(c.order, r.Scope)
	}
	return c, nil
}

// Empty returns a catalog with no entries.
func Empty() *Catalog {
	return &Catalog{remotes: make(map[string]Remote)}
}

// Get looks up a remote by scope.
func (c *Catalog) Get(scope string) (Remote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.remotes[scope]
	return r, ok
}

// List returns all remotes in manifest order.
func (c *Catalog) List() []Remote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Remote, 0, len(c.order))
	for _, scope := range c.order {
		out = append(out, c.remotes[scope])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.remotes)
}
