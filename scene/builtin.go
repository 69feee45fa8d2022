package scene

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed scenes/*.toml
var builtinFS embed.FS

// ErrUnknownScene is returned when a name matches neither a built-in scene nor a file
var ErrUnknownScene = errors.New("unknown scene")

// Names lists the built-in scenes in sorted order
func Names() []string {
	entries, err := builtinFS.ReadDir("scenes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}

// Builtin parses an embedded scene by name
func Builtin(name string) (*Scene, error) {
	data, err := builtinFS.ReadFile(path.Join("scenes", name+".toml"))
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownScene, "%q", name)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "builtin scene %q", name)
	}
	return s, nil
}

// Open resolves a built-in name first, then a file path
func Open(nameOrPath string) (*Scene, error) {
	if !strings.ContainsAny(nameOrPath, "/\\.") {
		return Builtin(nameOrPath)
	}
	return Load(nameOrPath)
}
