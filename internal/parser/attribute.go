package parser

import (
	"fmt"
	"strings"

	"github.com/n1rna/automate/internal/pattern"
)

// AttributeSpec is an attribute given as name:type:required[:default]
type AttributeSpec struct {
	Name         string
	DataType     pattern.DataType
	IsRequired   bool
	DefaultValue string
}

// ParseAttributeSpecs parses attribute specifications, rejecting duplicate names
func ParseAttributeSpecs(specs []string) ([]AttributeSpec, error) {
	attributes := make([]AttributeSpec, 0, len(specs))
	for _, spec := range specs {
		attribute, err := ParseAttributeSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid attribute specification '%s': %w", spec, err)
		}
		for _, existing := range attributes {
			if strings.EqualFold(existing.Name, attribute.Name) {
				return nil, fmt.Errorf("duplicate attribute name '%s'", attribute.Name)
			}
		}
		attributes = append(attributes, attribute)
	}
	return attributes, nil
}

// ParseAttributeSpec parses an attribute specification in the format name:type:required[:default]
func ParseAttributeSpec(spec string) (AttributeSpec, error) {
	// at most 4 parts, defaults may contain colons
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) < 3 {
		return AttributeSpec{}, fmt.Errorf(
			"format should be 'name:type:required[:default]', got %d parts",
			len(parts),
		)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return AttributeSpec{}, fmt.Errorf("attribute name cannot be empty")
	}

	dataType, err := pattern.ParseDataType(strings.TrimSpace(parts[1]))
	if err != nil {
		return AttributeSpec{}, err
	}

	var required bool
	switch requiredStr := strings.TrimSpace(strings.ToLower(parts[2])); requiredStr {
	case "true", "t", "1", "yes", "y":
		required = true
	case "false", "f", "0", "no", "n", "":
		required = false
	default:
		return AttributeSpec{}, fmt.Errorf("invalid required value '%s', must be true/false", requiredStr)
	}

	var defaultValue string
	if len(parts) == 4 {
		defaultValue = strings.TrimSpace(parts[3])
	}

	return AttributeSpec{
		Name:         name,
		DataType:     dataType,
		IsRequired:   required,
		DefaultValue: defaultValue,
	}, nil
}

// Apply adds the attributes to an element
func (s AttributeSpec) Apply(e *pattern.Element) (*pattern.Attribute, error) {
	return e.AddAttribute(s.Name, s.DataType, s.IsRequired, s.DefaultValue, nil)
}
