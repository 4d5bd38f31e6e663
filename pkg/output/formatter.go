// Package output renders analysis snapshots for the CLI
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Formatter serializes arbitrary result data for display or piping
type Formatter interface {
	Format(data map[string]any, pretty bool) ([]byte, error)
}

// NewFormatter returns the formatter for the named format, defaulting to text
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// JSONFormatter renders results as JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data map[string]any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// YAMLFormatter renders results as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data map[string]any, pretty bool) ([]byte, error) {
	return yaml.Marshal(data)
}

// TextFormatter renders results as aligned key-value lines, keys sorted for
// stable output
type TextFormatter struct{}

func (f *TextFormatter) Format(data map[string]any, pretty bool) ([]byte, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %v\n", k, data[k])
	}
	return buf.Bytes(), nil
}
