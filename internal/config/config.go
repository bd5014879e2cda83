// Package config provides the hierarchical configuration tree used by the
// tkgel trainer tooling. Configurations are nested YAML mappings addressed by
// dotted keys ("evokg.lr", "train.checkpoint.every"). Profile fragments may be
// pulled in via a top-level "import" list, and a "+++: +++" entry marks a
// mapping as an open extension point that accepts keys not present in the
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder is the key/value token that marks a mapping as an open
// extension point. It is stripped from resolved trees.
const Placeholder = "+++"

var (
	// ErrKeyNotFound is returned when a dotted key is absent from the tree.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch is returned when a value's type does not match the
	// type already present at a key.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Config holds a resolved configuration tree.
type Config struct {
	options map[string]any

	// open records dotted paths of mappings that carried a "+++" placeholder
	// and therefore accept keys unknown to the defaults.
	open map[string]bool
}

// New returns an empty configuration.
func New() *Config {
	return &Config{
		options: map[string]any{},
		open:    map[string]bool{},
	}
}

// Get returns the value at a dotted key.
func (c *Config) Get(key string) (any, error) {
	cur := any(c.options)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		cur, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
	}
	return cur, nil
}

// Exists reports whether a dotted key is present.
func (c *Config) Exists(key string) bool {
	_, err := c.Get(key)
	return err == nil
}

// GetString returns the string at key.
func (c *Config) GetString(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrTypeMismatch, key, v)
	}
	return s, nil
}

// GetInt returns the integer at key.
func (c *Config) GetInt(key string) (int, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	}
	return 0, fmt.Errorf("%w: %s is %T, want int", ErrTypeMismatch, key, v)
}

// GetFloat returns the float at key. Integer values are accepted and widened.
func (c *Config) GetFloat(key string) (float64, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %s is %T, want float", ErrTypeMismatch, key, v)
}

// GetBool returns the boolean at key. No coercion: only true/false values.
func (c *Config) GetBool(key string) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, want bool", ErrTypeMismatch, key, v)
	}
	return b, nil
}

// GetStringSlice returns the list of strings at key. A YAML list arrives as
// []any; each element must be a string.
func (c *Config) GetStringSlice(key string) ([]string, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	if s, ok := v.([]string); ok {
		return s, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want list of strings", ErrTypeMismatch, key, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, want string", ErrTypeMismatch, key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Set updates the value at an existing dotted key. The new value must be
// type-compatible with the current one (ints may widen into floats). Unknown
// keys are rejected unless the enclosing mapping is an open extension point;
// use SetCreate to add keys elsewhere.
func (c *Config) Set(key string, value any) error {
	return c.set(key, value, false)
}

// SetCreate sets a dotted key, creating intermediate mappings as needed.
func (c *Config) SetCreate(key string, value any) error {
	return c.set(key, value, true)
}

func (c *Config) set(key string, value any, create bool) error {
	parts := strings.Split(key, ".")
	cur := c.options
	for i, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok {
			if !create && !c.openAt(parts[:i+1]) {
				return fmt.Errorf("%w: %s", ErrKeyNotFound, strings.Join(parts[:i+1], "."))
			}
			m := map[string]any{}
			cur[part] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is %T, not a mapping",
				ErrTypeMismatch, strings.Join(parts[:i+1], "."), next)
		}
		cur = m
	}

	last := parts[len(parts)-1]
	existing, ok := cur[last]
	if !ok {
		if !create && !c.openAt(parts[:len(parts)-1]) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		cur[last] = value
		return nil
	}

	coerced, err := coerce(existing, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	cur[last] = coerced
	return nil
}

// openAt reports whether the mapping at the given path, or any ancestor, is
// an open extension point.
func (c *Config) openAt(parts []string) bool {
	for i := range parts {
		if c.open[strings.Join(parts[:i+1], ".")] {
			return true
		}
	}
	return false
}

// coerce checks that value may replace existing and returns the stored form.
// A nil existing value (YAML null) accepts anything, matching fields such as
// evokg.embedding_updater_structural_gconv that default to null.
func coerce(existing, value any) (any, error) {
	if existing == nil || value == nil {
		return value, nil
	}
	switch existing.(type) {
	case bool:
		if _, ok := value.(bool); ok {
			return value, nil
		}
	case string:
		if _, ok := value.(string); ok {
			return value, nil
		}
	case int, int64:
		switch value.(type) {
		case int, int64:
			return value, nil
		}
	case float64:
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case []any:
		if _, ok := value.([]any); ok {
			return value, nil
		}
	case map[string]any:
		if _, ok := value.(map[string]any); ok {
			return value, nil
		}
	default:
		return nil, fmt.Errorf("%w: unsupported stored type %T", ErrTypeMismatch, existing)
	}
	return nil, fmt.Errorf("%w: have %T, got %T", ErrTypeMismatch, existing, value)
}

// Check verifies that the string at key is one of the allowed values.
func (c *Config) Check(key string, allowed ...string) error {
	v, err := c.GetString(key)
	if err != nil {
		return err
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (valid: %s)",
		key, v, strings.Join(allowed, ", "))
}

// CheckRange verifies that the number at key lies in [lo, hi].
func (c *Config) CheckRange(key string, lo, hi float64) error {
	v, err := c.GetFloat(key)
	if err != nil {
		return err
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %g and %g, got %g", key, lo, hi, v)
	}
	return nil
}

// Flatten returns all leaf values keyed by dotted path, sorted iteration not
// guaranteed; use FlattenKeys for a stable key order.
func (c *Config) Flatten() map[string]any {
	out := map[string]any{}
	flatten("", c.options, out)
	return out
}

// FlattenKeys returns the sorted dotted keys of all leaves.
func (c *Config) FlattenKeys() []string {
	flat := c.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}

// Options returns a deep copy of the full tree.
func (c *Config) Options() map[string]any {
	return deepCopyMap(c.options)
}

// Clone returns a deep copy of the configuration, including extension-point
// markers. Used to derive an eval config from a train config.
func (c *Config) Clone() *Config {
	clone := New()
	clone.options = deepCopyMap(c.options)
	for k := range c.open {
		clone.open[k] = true
	}
	return clone
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// Bytes serializes the resolved tree to YAML. Parsing the result yields an
// equal tree.
func (c *Config) Bytes() ([]byte, error) {
	return yaml.Marshal(c.options)
}

// Save writes the resolved tree to path.
func (c *Config) Save(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
