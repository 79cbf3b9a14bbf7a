// Package schemafile loads schema registries from YAML or CUE documents.
//
// Both formats share one layout: a top-level "schemas" list whose items follow
// spec.SchemaDefinition.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/architeacher/queryspec/pkg/spec"
	"gopkg.in/yaml.v3"
)

const (
	FormatYAML = "yaml"
	FormatCUE  = "cue"

	schemasPath = "schemas"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported schema file format")
	ErrNoSchemas         = errors.New("schema document declares no schemas")
)

// Document is the YAML layout of a schema file.
type Document struct {
	Schemas []spec.SchemaDefinition `yaml:"schemas" json:"schemas"`
}

// FormatOf derives the document format from the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads path and builds the registry it declares.
func Load(path string) (*spec.Registry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	if format == FormatCUE {
		return DecodeCUE(data, filepath.Base(path))
	}

	return DecodeYAML(data)
}

// DecodeYAML rejects unknown keys so that misspelled options surface.
func DecodeYAML(data []byte) (*spec.Registry, error) {
	var doc Document

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML schema document: %w", err)
	}

	return build(doc.Schemas)
}

func DecodeCUE(data []byte, filename string) (*spec.Registry, error) {
	value := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE schema document: %w", err)
	}

	schemas := value.LookupPath(cue.ParsePath(schemasPath))
	if !schemas.Exists() {
		return nil, ErrNoSchemas
	}

	var defs []spec.SchemaDefinition
	if err := schemas.Decode(&defs); err != nil {
		return nil, fmt.Errorf("failed to decode CUE schemas: %w", err)
	}

	return build(defs)
}

func build(defs []spec.SchemaDefinition) (*spec.Registry, error) {
	if len(defs) == 0 {
		return nil, ErrNoSchemas
	}

	registry, err := spec.NewRegistry(defs...)
	if err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}

	return registry, nil
}
