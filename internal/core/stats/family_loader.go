package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir overlays family definitions from *.yaml files in dir onto the
// registry. Each file contains exactly one family at the top level. A file
// may override a built-in family, but two files defining the same name is an
// error. A missing directory is valid (no extra families configured).
func (r *FamilyRegistry) LoadDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("family config dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("family config path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading family config dir: %w", err)
	}

	loaded := make(map[string]string) // family name to the file that defined it
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading family file %s: %w", path, err)
		}

		var fam Family
		if err := yaml.Unmarshal(data, &fam); err != nil {
			return fmt.Errorf("parsing family file %s: %w", path, err)
		}
		if fam.Name == "" {
			continue // skip empty / comment-only files
		}
		if err := fam.validate(); err != nil {
			return fmt.Errorf("family file %s: %w", path, err)
		}

		if prev, dup := loaded[fam.Name]; dup {
			return fmt.Errorf("family %q defined in both %s and %s", fam.Name, prev, e.Name())
		}
		loaded[fam.Name] = e.Name()
		r.families[fam.Name] = fam
	}
	return nil
}
