// Package templates serves the embedded catalog of ready-made hotkey
// commands shown by the templates command. The catalog is read-only
// and decoded once.
package templates

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/skhdtools/skhdctl/pkg/errors"
)

//go:embed embedded/catalog.toml
var catalogTOML []byte

// Template is one ready-made command a shortcut can run.
type Template struct {
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`
	Command     string `toml:"command" json:"command"`

	// RequiresAdmin marks commands that need elevated rights and
	// therefore will not work from a plain skhd binding.
	RequiresAdmin bool `toml:"requires_admin" json:"requires_admin"`
}

// Category groups templates for display.
type Category struct {
	Name        string     `toml:"name" json:"name"`
	Description string     `toml:"description" json:"description"`
	Order       int        `toml:"order" json:"order"`
	Templates   []Template `toml:"templates" json:"templates"`
}

type catalog struct {
	Categories []Category `toml:"categories"`
}

var (
	loadOnce sync.Once
	loaded   catalog
	loadErr  error
)

func load() (catalog, error) {
	loadOnce.Do(func() {
		var c catalog
		if err := toml.Unmarshal(catalogTOML, &c); err != nil {
			loadErr = errors.Wrap(err, errors.ErrTemplateParse, "embedded template catalog is invalid")
			return
		}
		sort.SliceStable(c.Categories, func(i, j int) bool {
			return c.Categories[i].Order < c.Categories[j].Order
		})
		loaded = c
	})
	return loaded, loadErr
}

// Categories returns all template categories in display order.
func Categories() ([]Category, error) {
	c, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Category, len(c.Categories))
	copy(out, c.Categories)
	return out, nil
}

// Find returns the category with the given name, matched without
// regard to case.
func Find(name string) (Category, error) {
	c, err := load()
	if err != nil {
		return Category{}, err
	}
	for _, category := range c.Categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return Category{}, errors.Newf(errors.ErrNotFound, "no template category named %q", name)
}
