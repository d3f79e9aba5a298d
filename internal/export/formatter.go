package export

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Formatter renders any export document (GraphExport or *analyzer.AnalysisResult)
// to a string.
type Formatter interface {
	Format(data interface{}) (string, error)
}

// JSON implements JSON formatting via encoding/json.
type JSON struct{}

func (j *JSON) Format(data interface{}) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: error formatting as JSON: %w", err)
	}
	return string(b), nil
}

// YAML implements YAML formatting via gopkg.in/yaml.v3.
type YAML struct{}

func (y *YAML) Format(data interface{}) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("export: error formatting as YAML: %w", err)
	}
	return string(b), nil
}

// NewFormatter constructs the Formatter named by t.
func NewFormatter(t Type) (Formatter, error) {
	switch t {
	case TypeJSON:
		return &JSON{}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	default:
		return nil, fmt.Errorf("export: unknown formatter type %q", t)
	}
}
