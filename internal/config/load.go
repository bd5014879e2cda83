package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Resolver maps an import name to a YAML fragment. Implementations: the
// embedded profile registry and DirResolver for fragments next to the loaded
// file.
type Resolver interface {
	Fragment(name string) ([]byte, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) ([]byte, error)

// Fragment implements Resolver.
func (f ResolverFunc) Fragment(name string) ([]byte, error) {
	return f(name)
}

// DirResolver resolves import names to <dir>/<name>.yaml.
func DirResolver(dir string) Resolver {
	return ResolverFunc(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name+".yaml"))
	})
}

// Load parses a YAML document and resolves its imports. The top-level
// "import" key may hold a single name or a list of names; fragments are
// applied in listed order, depth-first, each at most once, before the
// document's own keys so that local keys win. "+++" placeholders are recorded
// as open extension points and stripped.
func Load(data []byte, resolvers ...Resolver) (*Config, error) {
	tree, err := parseTree(data)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	visited := map[string]bool{}
	if err := applyImports(tree, merged, visited, resolvers); err != nil {
		return nil, err
	}
	mergeTree(merged, tree)

	cfg := New()
	cfg.options = merged
	collectOpen("", cfg.options, cfg.open)
	return cfg, nil
}

// LoadFile loads a configuration file, resolving imports against the given
// resolvers and then against the file's own directory.
func LoadFile(path string, resolvers ...Resolver) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	resolvers = append(resolvers, DirResolver(filepath.Dir(path)))
	cfg, err := Load(data, resolvers...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func parseTree(data []byte) (map[string]any, error) {
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return tree, nil
}

// applyImports pops the "import" key from tree and merges each named fragment
// (recursively resolving the fragment's own imports) into dst.
func applyImports(tree, dst map[string]any, visited map[string]bool, resolvers []Resolver) error {
	names, err := popImports(tree)
	if err != nil {
		return err
	}
	for _, name := range names {
		if visited[name] {
			continue
		}
		visited[name] = true

		data, err := resolveFragment(name, resolvers)
		if err != nil {
			return err
		}
		fragment, err := parseTree(data)
		if err != nil {
			return fmt.Errorf("fragment %s: %w", name, err)
		}
		if err := applyImports(fragment, dst, visited, resolvers); err != nil {
			return fmt.Errorf("fragment %s: %w", name, err)
		}
		mergeTree(dst, fragment)
	}
	return nil
}

func popImports(tree map[string]any) ([]string, error) {
	raw, ok := tree["import"]
	if !ok {
		return nil, nil
	}
	delete(tree, "import")

	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []any:
		names := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("import[%d] is %T, want string", i, item)
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, fmt.Errorf("import is %T, want string or list of strings", raw)
}

func resolveFragment(name string, resolvers []Resolver) ([]byte, error) {
	var lastErr error
	for _, r := range resolvers {
		data, err := r.Fragment(name)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("unknown import %q: %w", name, lastErr)
	}
	return nil, fmt.Errorf("unknown import %q", name)
}
