package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlThemeFile is the top-level YAML structure for custom theme files.
type yamlThemeFile struct {
	Theme Template `yaml:"theme"`
}

// LoadTemplateFromBytes parses and validates a theme template from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the theme schema.
// Postcondition: Returns a validated Template or a non-nil error.
func LoadTemplateFromBytes(data []byte) (Template, error) {
	var file yamlThemeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Template{}, fmt.Errorf("parsing theme YAML: %w", err)
	}
	if err := file.Theme.Validate(); err != nil {
		return Template{}, fmt.Errorf("validating theme: %w", err)
	}
	return file.Theme, nil
}

// LoadTemplateFromFile reads and validates a single theme YAML file.
//
// Precondition: path must point to a valid YAML theme file.
// Postcondition: Returns a validated Template or a non-nil error.
func LoadTemplateFromFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("reading theme file %s: %w", path, err)
	}
	tmpl, err := LoadTemplateFromBytes(data)
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	return tmpl, nil
}

// LoadDir loads all YAML files in dir and registers them into the catalog,
// replacing built-ins on theme collision.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns the number of themes registered, or the first error.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading theme directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		tmpl, err := LoadTemplateFromFile(filepath.Join(dir, name))
		if err != nil {
			return loaded, err
		}
		if err := c.Register(tmpl); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
