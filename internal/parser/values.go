// Package parser reads attribute values and attribute specifications supplied on the command line.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n1rna/automate/internal/pattern"
)

// ParseValuesFile reads attribute values from a YAML, JSON or dotenv file. The format follows
// the extension; files without a known extension are tried as YAML, then JSON, then dotenv.
func ParseValuesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLValues(data)
	case ".json":
		return parseJSONValues(data)
	case ".env":
		return NewDotEnvParser().Parse(bytes.NewReader(data))
	}

	if values, err := parseYAMLValues(data); err == nil {
		return values, nil
	}
	if values, err := parseJSONValues(data); err == nil {
		return values, nil
	}
	values, err := NewDotEnvParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("file is neither valid YAML, JSON, nor dotenv format: %w", err)
	}
	return values, nil
}

func parseYAMLValues(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return flatten(raw)
}

func parseJSONValues(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return flatten(raw)
}

// flatten formats scalar values the way attribute values are written; nested values are rejected
func flatten(raw map[string]interface{}) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("the value of '%s' must be a scalar", key)
		default:
			values[key] = pattern.FormatValue(v)
		}
	}
	return values, nil
}
