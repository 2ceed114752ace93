package configx

import (
	"strconv"
	"strings"
	"time"
)

// Value wraps a raw configuration string and provides type conversion methods
type Value interface {
	// IsSet returns true if the key exists with a non-empty value
	IsSet() bool

	AsString() string
	AsStringDefault(def string) string

	AsInt() int
	AsIntDefault(def int) int

	AsFloat() float64
	AsFloatDefault(def float64) float64

	AsBool() bool
	AsBoolDefault(def bool) bool

	AsDuration() time.Duration
	AsDurationDefault(def time.Duration) time.Duration
}

type value struct {
	key string
	raw string
	set bool
}

func (v value) IsSet() bool {
	return v.set && strings.TrimSpace(v.raw) != ""
}

func (v value) AsString() string {
	return v.raw
}

func (v value) AsStringDefault(def string) string {
	if !v.IsSet() {
		return def
	}
	return v.raw
}

func (v value) AsInt() int {
	return v.AsIntDefault(0)
}

func (v value) AsIntDefault(def int) int {
	if !v.IsSet() {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return def
	}
	return i
}

func (v value) AsFloat() float64 {
	return v.AsFloatDefault(0)
}

func (v value) AsFloatDefault(def float64) float64 {
	if !v.IsSet() {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.raw), 64)
	if err != nil {
		return def
	}
	return f
}

func (v value) AsBool() bool {
	return v.AsBoolDefault(false)
}

func (v value) AsBoolDefault(def bool) bool {
	if !v.IsSet() {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v.raw)) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	default:
		return def
	}
}

func (v value) AsDuration() time.Duration {
	return v.AsDurationDefault(0)
}

// AsDurationDefault accepts Go durations ("1m30s") or a bare number of seconds.
func (v value) AsDurationDefault(def time.Duration) time.Duration {
	if !v.IsSet() {
		return def
	}
	s := strings.TrimSpace(v.raw)
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}
