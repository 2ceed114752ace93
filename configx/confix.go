// Package configx layers configuration sources (defaults, .env files, the
// process environment, literal maps) into one read-only view.
//
// Keys are lower-cased and underscores become dots, so WHATSAPP_TOKEN is read
// as "whatsapp.token". Values are kept as strings and converted on access.
package configx

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config represents the main configuration interface
type Config interface {
	// Get retrieves a configuration value by key
	Get(key string) Value

	// Has checks if a configuration key exists and is non-empty
	Has(key string) bool

	// Keys returns all known keys in sorted order
	Keys() []string

	// Missing returns the env-style names from envNames that are unset or empty
	Missing(envNames ...string) []string

	// LoadAll reloads all configuration sources
	LoadAll() error
}

// Source represents a configuration source
type Source interface {
	// Load returns flat dotted keys mapped to raw string values
	Load() (map[string]string, error)

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher values override lower)
	Priority() int
}

// EnvKey converts an environment variable name to its dotted config key
func EnvKey(envName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(envName)), "_", ".")
}

type configuration struct {
	sync.RWMutex
	values  map[string]string
	sources []Source
}

func newConfiguration(sources []Source) *configuration {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &configuration{
		values:  make(map[string]string),
		sources: sorted,
	}
}

// LoadAll reloads every source, lowest priority first
func (c *configuration) LoadAll() error {
	merged := make(map[string]string)
	for _, src := range c.sources {
		vals, err := src.Load()
		if err != nil {
			return fmt.Errorf("configx: loading %s: %w", src.Name(), err)
		}
		for k, v := range vals {
			merged[k] = v
		}
	}

	c.Lock()
	c.values = merged
	c.Unlock()
	return nil
}

func (c *configuration) Get(key string) Value {
	c.RLock()
	defer c.RUnlock()
	raw, ok := c.values[key]
	return value{key: key, raw: raw, set: ok}
}

func (c *configuration) Has(key string) bool {
	return c.Get(key).IsSet()
}

func (c *configuration) Keys() []string {
	c.RLock()
	defer c.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *configuration) Missing(envNames ...string) []string {
	var missing []string
	for _, name := range envNames {
		if !c.Has(EnvKey(name)) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Builder provides a fluent API for building configuration
type Builder interface {
	// FromDotEnv adds a .env file source. A missing file is skipped.
	FromDotEnv(path string) Builder

	// FromEnv adds an environment variable source
	FromEnv(prefix string) Builder

	// FromMap adds a map source
	FromMap(values map[string]string, name string) Builder

	// WithDefaults adds default values with the lowest priority
	WithDefaults(defaults map[string]string) Builder

	// Build loads every source
	Build() (Config, error)
}

type builder struct {
	sources []Source
}

// NewBuilder creates an empty Builder
func NewBuilder() Builder {
	return &builder{}
}

func (b *builder) FromDotEnv(path string) Builder {
	b.sources = append(b.sources, NewDotEnvSource(path, 10))
	return b
}

func (b *builder) FromEnv(prefix string) Builder {
	b.sources = append(b.sources, NewEnvSource(prefix, 20))
	return b
}

func (b *builder) FromMap(values map[string]string, name string) Builder {
	b.sources = append(b.sources, NewMapSource(values, name, 30))
	return b
}

func (b *builder) WithDefaults(defaults map[string]string) Builder {
	b.sources = append(b.sources, NewMapSource(defaults, "defaults", 0))
	return b
}

func (b *builder) Build() (Config, error) {
	cfg := newConfiguration(b.sources)
	if err := cfg.LoadAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}
