package config

import "strings"

// mergeTree deep-merges src into dst. Mappings merge recursively; scalars and
// lists in src replace dst values. Returns dst for chaining.
func mergeTree(dst, src map[string]any) map[string]any {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = deepCopyValue(v)
			continue
		}
		existing, ok := dst[k].(map[string]any)
		if !ok {
			dst[k] = deepCopyMap(sub)
			continue
		}
		mergeTree(existing, sub)
	}
	return dst
}

// collectOpen records the dotted path of every mapping carrying a "+++"
// placeholder into open, and removes the placeholder entries from the tree.
func collectOpen(prefix string, m map[string]any, open map[string]bool) {
	if ph, ok := m[Placeholder]; ok {
		if s, ok := ph.(string); ok && s == Placeholder {
			open[prefix] = true
		}
		delete(m, Placeholder)
	}
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			collectOpen(key, sub, open)
		}
	}
}

// UnknownKeys returns the dotted keys in other that are absent from c and not
// covered by one of c's open extension points. Sorted output is up to the
// caller.
func (c *Config) UnknownKeys(other *Config) []string {
	return unknownKeys(c, other.options)
}

// unknownKeys returns the dotted keys of leaves in tree that are absent from
// base and not covered by an open extension point. Used for strict validation
// of user-supplied overrides.
func unknownKeys(base *Config, tree map[string]any) []string {
	var out []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if base.Exists(key) {
				if sub, ok := v.(map[string]any); ok {
					walk(key, sub)
				}
				continue
			}
			if base.openAt(strings.Split(key, ".")) {
				continue
			}
			out = append(out, key)
		}
	}
	walk("", tree)
	return out
}
