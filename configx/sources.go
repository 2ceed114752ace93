package configx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource loads configuration from environment variables
type EnvSource struct {
	prefix   string
	priority int
	environ  func() []string
}

// NewEnvSource creates a new environment variable source.
// With a prefix, only variables starting with it are read and the prefix is stripped.
func NewEnvSource(prefix string, priority int) Source {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		environ:  os.Environ,
	}
}

func (s *EnvSource) Load() (map[string]string, error) {
	result := make(map[string]string)
	for _, env := range s.environ() {
		key, val, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}
		if key == "" {
			continue
		}
		result[EnvKey(key)] = val
	}
	return result, nil
}

func (s *EnvSource) Name() string {
	return fmt.Sprintf("env(%s)", s.prefix)
}

func (s *EnvSource) Priority() int {
	return s.priority
}

// DotEnvSource loads configuration from a .env file
type DotEnvSource struct {
	path     string
	priority int
}

// NewDotEnvSource creates a new .env file source
func NewDotEnvSource(path string, priority int) Source {
	return &DotEnvSource{
		path:     path,
		priority: priority,
	}
}

// Load parses the file with godotenv. A missing file yields no values.
func (s *DotEnvSource) Load() (map[string]string, error) {
	vals, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	result := make(map[string]string, len(vals))
	for k, v := range vals {
		result[EnvKey(k)] = v
	}
	return result, nil
}

func (s *DotEnvSource) Name() string {
	return fmt.Sprintf("dotenv(%s)", s.path)
}

func (s *DotEnvSource) Priority() int {
	return s.priority
}

// MapSource loads configuration from a map. Keys may be env-style or dotted.
type MapSource struct {
	values   map[string]string
	name     string
	priority int
}

// NewMapSource creates a new map source
func NewMapSource(values map[string]string, name string, priority int) Source {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[EnvKey(k)] = v
	}
	return &MapSource{
		values:   copied,
		name:     name,
		priority: priority,
	}
}

func (s *MapSource) Load() (map[string]string, error) {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *MapSource) Name() string {
	return s.name
}

func (s *MapSource) Priority() int {
	return s.priority
}
