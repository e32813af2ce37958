package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Document is the on-disk form of a catalog.
type Document struct {
	Types             []TypeDoc           `json:"types" yaml:"types" toml:"types"`
	Modules           []ModuleDoc         `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules"`
	RequestParameters map[string][]string `json:"requestParameters,omitempty" yaml:"requestParameters,omitempty" toml:"requestParameters"`
}

// TypeDoc is one type entry of a catalog document.
type TypeDoc struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Namespace  string      `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace"`
	Kind       string      `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind"`
	Generic    []string    `json:"generic,omitempty" yaml:"generic,omitempty" toml:"generic"`
	Base       string      `json:"base,omitempty" yaml:"base,omitempty" toml:"base"`
	Interfaces []string    `json:"interfaces,omitempty" yaml:"interfaces,omitempty" toml:"interfaces"`
	Properties []MemberDoc `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties"`
	Fields     []MemberDoc `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields"`
	Constants  []MemberDoc `json:"constants,omitempty" yaml:"constants,omitempty" toml:"constants"`
	Values     []ValueDoc  `json:"values,omitempty" yaml:"values,omitempty" toml:"values"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes"`
	Doc        string      `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc"`
	Ignore     bool        `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore"`
}

// MemberDoc is a property, field or constant entry.
type MemberDoc struct {
	Name          string      `json:"name" yaml:"name" toml:"name"`
	JSONName      string      `json:"jsonName,omitempty" yaml:"jsonName,omitempty" toml:"jsonName"`
	Type          string      `json:"type" yaml:"type" toml:"type"`
	DeclaringType string      `json:"declaringType,omitempty" yaml:"declaringType,omitempty" toml:"declaringType"`
	Attributes    []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes"`
	Doc           string      `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc"`
	Ignore        bool        `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore"`
	Value         any         `json:"value,omitempty" yaml:"value,omitempty" toml:"value"`
}

// ValueDoc is an enum value entry.
type ValueDoc struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Value      any         `json:"value,omitempty" yaml:"value,omitempty" toml:"value"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes"`
	Doc        string      `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc"`
}

// ModuleDoc declares an explicit module grouping. Types are referenced by
// qualified or simple name; generic definitions need their arity suffix
// ("RequestBase`1").
type ModuleDoc struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Types []string `json:"types" yaml:"types" toml:"types"`
}

// Format is a supported document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (expected .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Decode unmarshals data in the given format into v. JSON numbers stay
// json.Number so enum and constant values keep every digit.
func Decode(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		return decodeJSON(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		return toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("invalid character after top-level value")
	}
	return nil
}

// Encode marshals a document in the given format. TOML is decode-only since
// unset enum values are nil and TOML has no null.
func Encode(format Format, doc *Document) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("cannot encode catalog as %q", format)
	}
}

// ReadDocument reads and decodes a catalog document from disk.
func ReadDocument(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc Document
	if err := Decode(format, data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return &doc, nil
}

// ReadRequestParameters reads a standalone request-parameters document: a
// map of request type names to query-parameter method names, optionally
// nested under a "requestParameters" key.
func ReadRequestParameters(path string) (map[string][]string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request parameters: %w", err)
	}
	var wrapped struct {
		RequestParameters map[string][]string `json:"requestParameters" yaml:"requestParameters" toml:"requestParameters"`
	}
	if err := Decode(format, data, &wrapped); err == nil && len(wrapped.RequestParameters) > 0 {
		return wrapped.RequestParameters, nil
	}
	var flat map[string][]string
	if err := Decode(format, data, &flat); err != nil {
		return nil, fmt.Errorf("decode request parameters %s: %w", path, err)
	}
	return flat, nil
}
