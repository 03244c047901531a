package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/flags.yaml
var defaultFlagsYAML []byte

// yamlCatalog is the on-disk shape of a catalog file.
type yamlCatalog struct {
	Flags []Flag `yaml:"flags"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var yc yamlCatalog
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("catalog: yaml unmarshal: %w", err)
	}
	return New(yc.Flags)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultFlagsYAML)
}

// Load loads the flag catalog.
// Search order: customPath -> ~/.flagquest/flags.yaml -> ./configs/flags.yaml -> embedded default
func Load(customPath string) (*Catalog, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", customPath, err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", customPath, err)
		}
		return c, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(home, ".flagquest", "flags.yaml")); err == nil {
			if c, err := Parse(data); err == nil {
				return c, nil
			}
		}
	}

	if data, err := os.ReadFile("configs/flags.yaml"); err == nil {
		if c, err := Parse(data); err == nil {
			return c, nil
		}
	}

	return Default()
}
