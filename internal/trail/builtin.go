package trail

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed trails/*.trl
var builtinFS embed.FS

func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("trails")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".trl"))
	}
	sort.Strings(names)
	return names
}

// NormalizeName canonicalizes builtin trail names: case, surrounding
// space and underscores are ignored.
func NormalizeName(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.Trim(normalized, "-")
}

func Builtin(name string) (*Provider, error) {
	name = NormalizeName(name)
	f, err := builtinFS.Open(path.Join("trails", name+".trl"))
	if err != nil {
		return nil, fmt.Errorf("unknown builtin trail %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	defer f.Close()
	return FromReader(name, f)
}

// Open resolves ref as a builtin trail name first and a file path second.
func Open(ref string) (*Provider, error) {
	if p, err := Builtin(ref); err == nil {
		return p, nil
	}
	return FromFile(ref)
}
