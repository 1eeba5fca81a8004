// Package output renders call results and engine state for the CLI in
// table, JSON, YAML, and markdown form.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// CallReport is one gateway call as shown to the operator.
type CallReport struct {
	Operation string `json:"operation" yaml:"operation"`
	Payload   string `json:"payload,omitempty" yaml:"payload,omitempty"`
	Response  string `json:"response,omitempty" yaml:"response,omitempty"`
	OK        bool   `json:"ok" yaml:"ok"`
	ElapsedMs int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Formatter renders call reports.
type Formatter interface {
	FormatCalls(reports []CallReport) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// YAMLFormatter renders call reports as a YAML list.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatCalls(reports []CallReport) (string, error) {
	return RenderYAML(reports)
}

// FormatCallList renders call reports using the requested format.
func FormatCallList(format Format, reports []CallReport) (string, error) {
	return NewFormatter(format).FormatCalls(reports)
}

// RenderJSON marshals any value as indented JSON, for the introspection
// commands that pass server responses through.
func RenderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderYAML marshals any value as YAML.
func RenderYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// RenderStructured renders JSON or YAML per the requested format.
func RenderStructured(format Format, v any) (string, error) {
	if format == FormatYAML {
		return RenderYAML(v)
	}
	return RenderJSON(v)
}
