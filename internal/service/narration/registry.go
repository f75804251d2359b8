package narration

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
)

//go:embed themes/*.yaml
var themeFiles embed.FS

// Registry 是只读的主题集合，加载后可并发访问
type Registry struct {
	themes    map[string]*Theme
	defaultID string
}

// NewRegistry 加载内置主题，defaultID 必须存在
func NewRegistry(defaultID string) (*Registry, error) {
	return loadRegistry(themeFiles, "themes", defaultID)
}

func loadRegistry(fsys fs.FS, dir, defaultID string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read theme directory: %w", err)
	}

	reg := &Registry{
		themes:    make(map[string]*Theme, len(entries)),
		defaultID: defaultID,
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read theme %s: %w", entry.Name(), err)
		}

		theme, err := ParseTheme(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if _, dup := reg.themes[theme.ID]; dup {
			return nil, fmt.Errorf("duplicate theme %q", theme.ID)
		}

		reg.themes[theme.ID] = theme
	}

	if _, ok := reg.themes[defaultID]; !ok {
		return nil, fmt.Errorf("default theme %q is not defined", defaultID)
	}

	return reg, nil
}

func (r *Registry) Get(id string) (*Theme, bool) {
	t, ok := r.themes[id]
	return t, ok
}

func (r *Registry) Default() *Theme {
	return r.themes[r.defaultID]
}

func (r *Registry) DefaultID() string {
	return r.defaultID
}

// List 返回按字典序排列的主题 ID
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.themes))
	for id := range r.themes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
