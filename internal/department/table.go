package department

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultTable []byte

// Group is one canonical department and the spellings that map to it.
type Group struct {
	Key     string   `yaml:"key"`
	Members []string `yaml:"members"`
}

// Table is the synonym data asset: ordered groups plus shorthand overrides.
type Table struct {
	Groups    []Group           `yaml:"groups"`
	Overrides map[string]string `yaml:"overrides"`
}

// DefaultTable returns the table shipped with the binary.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTable)
}

// LoadTable reads a synonym table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonyms file %q: %w", path, err)
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("synonyms file %q: %w", path, err)
	}
	return table, nil
}

func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse synonyms table: %w", err)
	}
	if len(table.Groups) == 0 {
		return nil, fmt.Errorf("synonyms table has no groups")
	}
	return &table, nil
}

type group struct {
	key     string
	members map[string]struct{}
}

// compile normalizes every key, member and override and checks the table
// is usable: keys are unique, each key canonicalizes to itself and every
// override points at a known key.
func (t *Table) compile() ([]group, map[string]string, error) {
	groups := make([]group, 0, len(t.Groups))
	keys := make(map[string]struct{}, len(t.Groups))

	for idx, g := range t.Groups {
		key := Normalize(g.Key)
		if key == "" {
			return nil, nil, fmt.Errorf("group #%d has an empty key", idx)
		}
		if _, dup := keys[key]; dup {
			return nil, nil, fmt.Errorf("duplicate group key %q", key)
		}
		keys[key] = struct{}{}

		members := make(map[string]struct{}, len(g.Members)+1)
		members[key] = struct{}{}
		for _, m := range g.Members {
			if m = Normalize(m); m != "" {
				members[m] = struct{}{}
			}
		}
		groups = append(groups, group{key: key, members: members})
	}

	overrides := make(map[string]string, len(t.Overrides))
	for short, target := range t.Overrides {
		short, target = Normalize(short), Normalize(target)
		if short == "" {
			continue
		}
		if _, ok := keys[target]; !ok {
			return nil, nil, fmt.Errorf("override %q points to unknown group %q", short, target)
		}
		if prev, ok := overrides[short]; ok && prev != target {
			return nil, nil, fmt.Errorf("override %q maps to both %q and %q", short, prev, target)
		}
		overrides[short] = target
	}

	for _, g := range groups {
		if got := lookup(groups, overrides, g.key); got != g.key {
			return nil, nil, fmt.Errorf("group key %q is claimed by earlier group %q", g.key, got)
		}
	}

	return groups, overrides, nil
}

func lookup(groups []group, overrides map[string]string, normalized string) string {
	for _, g := range groups {
		if _, ok := g.members[normalized]; ok {
			return g.key
		}
	}
	if key, ok := overrides[normalized]; ok {
		return key
	}
	return ""
}

// Keys lists the canonical keys in lookup order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		keys = append(keys, Normalize(g.Key))
	}
	return keys
}

func (g Group) String() string {
	return fmt.Sprintf("%s: %s", Normalize(g.Key), strings.Join(g.Members, ", "))
}
