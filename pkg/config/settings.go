// Package config implements the SET-chunk settings table decoded from a
// scene file: a string-keyed map of typed values with three
// not-found policies (Ignore/Warn/Throw).
package config

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ear-go/ear/internal/logger"
	"github.com/ear-go/ear/pkg/core"
)

// NotFoundPolicy controls what happens when a lookup misses.
type NotFoundPolicy int

const (
	Ignore NotFoundPolicy = iota
	Warn
	Throw
)

// Value is one decoded setting: a SET chunk entry is always one of
// these four shapes.
type Value struct {
	Int    *int32
	Float  *float64
	Vec    *core.Vec3
	String *string
}

// ConfigError reports a required setting missing under the Throw
// policy, or a type mismatch at a typed accessor.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: setting %q: %s", e.Key, e.Msg)
}

// Settings is the decoded SET-chunk table plus warn-dedup bookkeeping.
// Lookups are safe for concurrent use: every Render/Process worker
// queries the same Settings read-only except for the warned-once set.
type Settings struct {
	mu     sync.Mutex
	values map[string]Value
	warned map[string]bool
}

// New builds an empty Settings table; Decode-time code populates it via
// Set as SET-chunk entries are read.
func New() *Settings {
	return &Settings{values: make(map[string]Value), warned: make(map[string]bool)}
}

// Set installs a decoded setting, overwriting any prior value for key.
func (s *Settings) Set(key string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// IsSet reports whether key was present in the SET chunk, with no
// not-found side effects (equivalent to the Ignore policy).
func (s *Settings) IsSet(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

func (s *Settings) lookup(key string, policy NotFoundPolicy) (Value, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if ok {
		return v, true, nil
	}
	switch policy {
	case Ignore:
		return Value{}, false, nil
	case Warn:
		if !s.warned[key] {
			s.warned[key] = true
			logger.Warn("setting not found, using default", zap.String("key", key))
		}
		return Value{}, false, nil
	default: // Throw
		return Value{}, false, &ConfigError{Key: key, Msg: "not found"}
	}
}

// Int returns the setting's int32 value under policy. ok is false if the
// key is absent (Ignore/Warn) or mistyped.
func (s *Settings) Int(key string, policy NotFoundPolicy) (int32, bool, error) {
	v, ok, err := s.lookup(key, policy)
	if err != nil || !ok {
		return 0, false, err
	}
	if v.Int == nil {
		return 0, false, &ConfigError{Key: key, Msg: "not an int4"}
	}
	return *v.Int, true, nil
}

// Bool returns Int(key) > 0.
func (s *Settings) Bool(key string, policy NotFoundPolicy) (bool, bool, error) {
	n, ok, err := s.Int(key, policy)
	return n > 0, ok, err
}

// Float returns the setting's float64 value under policy.
func (s *Settings) Float(key string, policy NotFoundPolicy) (float64, bool, error) {
	v, ok, err := s.lookup(key, policy)
	if err != nil || !ok {
		return 0, false, err
	}
	if v.Float == nil {
		return 0, false, &ConfigError{Key: key, Msg: "not a flt4"}
	}
	return *v.Float, true, nil
}

// Vec3 returns the setting's core.Vec3 value under policy.
func (s *Settings) Vec3(key string, policy NotFoundPolicy) (core.Vec3, bool, error) {
	v, ok, err := s.lookup(key, policy)
	if err != nil || !ok {
		return core.Vec3{}, false, err
	}
	if v.Vec == nil {
		return core.Vec3{}, false, &ConfigError{Key: key, Msg: "not a vec3"}
	}
	return *v.Vec, true, nil
}

// String returns the setting's string value under policy.
func (s *Settings) String(key string, policy NotFoundPolicy) (string, bool, error) {
	v, ok, err := s.lookup(key, policy)
	if err != nil || !ok {
		return "", false, err
	}
	if v.String == nil {
		return "", false, &ConfigError{Key: key, Msg: "not a str"}
	}
	return *v.String, true, nil
}
