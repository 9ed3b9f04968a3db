package templates

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// LoadFS walks the provided filesystem and parses JSON/YAML template
// documents. Each file holds either a single template or a list of them. When
// fsys is nil or no template files are present, the result is empty.
func LoadFS(fsys fs.FS) ([]model.Template, error) {
	if fsys == nil {
		return nil, nil
	}

	var out []model.Template
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", path, err)
		}

		parsed, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for _, tpl := range parsed {
			id := strings.TrimSpace(tpl.ID)
			if id == "" {
				return fmt.Errorf("templates: file %s defines a template without an id", path)
			}
			if origin, exists := seen[id]; exists {
				return fmt.Errorf("templates: duplicate template %q (files %s and %s)", id, origin, path)
			}
			seen[id] = path
			tpl.ID = id
			out = append(out, tpl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func parseDocument(data []byte, path string) ([]model.Template, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if looksLikeJSONList(data) {
			var list []model.Template
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("templates: parse %s: %w", path, err)
			}
			return list, nil
		}
		var single model.Template
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("templates: parse %s: %w", path, err)
		}
		return []model.Template{single}, nil
	}

	var list []model.Template
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}
	var single model.Template
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", path, err)
	}
	return []model.Template{single}, nil
}

func looksLikeJSONList(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
