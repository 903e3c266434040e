package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns the registry shipped with the binary: User, Address, and
// Payment information forms.
func Builtin() *Registry {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Errorf("schema: builtin bundle: %w", err))
	}
	reg, err := LoadFS(sub)
	if err != nil {
		panic(err)
	}
	return reg
}

type documentFile struct {
	Forms []model.FormSchema `json:"forms" yaml:"forms"`
}

// LoadFS walks fsys and parses every JSON/YAML schema document it finds.
// Files are read in lexical order so declaration order is deterministic
// across platforms.
func LoadFS(fsys fs.FS) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is nil")
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("schema: walk: %w", err)
	}
	sort.Strings(paths)

	var schemas []model.FormSchema
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, doc.Forms...)
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("schema: no form schemas found")
	}
	return NewRegistry(schemas...)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
