package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/outparse/core/extract"
)

// Format is the encoding of a schema file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// fileSchema is the on-disk layout:
//
//	name: prd-lite
//	fields:
//	  - name: Project Name
//	    kind: str
//	  - name: Task list
//	    kind: List[str]
type fileSchema struct {
	Name   string      `yaml:"name" toml:"name"`
	Fields []fileField `yaml:"fields" toml:"fields"`
}

type fileField struct {
	Name string `yaml:"name" toml:"name"`
	Kind string `yaml:"kind" toml:"kind"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported schema file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads a schema file. A schema without a name is named after the file.
func Load(path string) (Schema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Schema{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a schema document. Every field needs a non-empty, unique
// name and a kind ParseKind accepts; a schema needs at least one field.
func Parse(data []byte, format Format) (Schema, error) {
	var raw fileSchema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Schema{}, fmt.Errorf("failed to parse YAML schema: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Schema{}, fmt.Errorf("failed to parse TOML schema: %w", err)
		}
	default:
		return Schema{}, fmt.Errorf("unsupported schema format %q", format)
	}

	if len(raw.Fields) == 0 {
		return Schema{}, errors.New("schema declares no fields")
	}
	s := Schema{Name: raw.Name, Fields: make([]extract.FieldSpec, 0, len(raw.Fields))}
	seen := make(map[string]bool, len(raw.Fields))
	for i, f := range raw.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return Schema{}, fmt.Errorf("field %d has no name", i)
		}
		if seen[name] {
			return Schema{}, fmt.Errorf("field %q declared twice", name)
		}
		seen[name] = true
		kind, err := extract.ParseKind(f.Kind)
		if err != nil {
			return Schema{}, fmt.Errorf("field %q: %w", name, err)
		}
		s.Fields = append(s.Fields, extract.FieldSpec{Name: name, Kind: kind})
	}
	return s, nil
}
