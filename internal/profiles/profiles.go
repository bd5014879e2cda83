// Package profiles ships the built-in configuration fragments for the tkgel
// model families and validates resolved configurations against them.
package profiles

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/tkge-lab/tkgel/internal/config"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Registry resolves import names against the embedded fragments.
type Registry struct{}

// Fragment implements config.Resolver.
func (Registry) Fragment(name string) ([]byte, error) {
	data, err := defaults.ReadFile("defaults/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built-in profile %q", name)
	}
	return data, nil
}

// Names lists the embedded profile names, excluding the base defaults.
func Names() []string {
	entries, err := defaults.ReadDir("defaults")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".yaml")
		if name == "default" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a config holding only the base defaults (job, train, valid,
// eval sections).
func Default() (*config.Config, error) {
	data, err := Registry{}.Fragment("default")
	if err != nil {
		return nil, err
	}
	return config.Load(data, Registry{})
}

// Base returns the base defaults with every built-in profile fragment merged
// in. Used as the reference tree for unknown-key detection.
func Base() (*config.Config, error) {
	var doc strings.Builder
	doc.WriteString("import:\n")
	doc.WriteString("  - default\n")
	for _, name := range Names() {
		fmt.Fprintf(&doc, "  - %s\n", name)
	}
	return config.Load([]byte(doc.String()), Registry{})
}
