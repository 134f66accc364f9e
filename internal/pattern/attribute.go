package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n1rna/automate/internal/errs"
)

// DataType is the type of an attribute value
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeBool     DataType = "bool"
	DataTypeInt      DataType = "int"
	DataTypeFloat    DataType = "float"
	DataTypeDateTime DataType = "datetime"
)

// SupportedDataTypes lists every attribute data type
var SupportedDataTypes = []DataType{DataTypeString, DataTypeBool, DataTypeInt, DataTypeFloat, DataTypeDateTime}

// ParseDataType parses a data type name case-insensitively; empty means string
func ParseDataType(s string) (DataType, error) {
	if s == "" {
		return DataTypeString, nil
	}
	for _, dt := range SupportedDataTypes {
		if strings.EqualFold(string(dt), s) {
			return dt, nil
		}
	}
	return "", errs.Validation("the data type '%s' is not supported, use one of: %s", s, joinDataTypes())
}

func joinDataTypes() string {
	names := make([]string, 0, len(SupportedDataTypes))
	for _, dt := range SupportedDataTypes {
		names = append(names, string(dt))
	}
	return strings.Join(names, ", ")
}

var dateTimeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Attribute is a schema leaf describing one configurable value
type Attribute struct {
	ID           string
	Name         string
	DataType     DataType
	IsRequired   bool
	DefaultValue string
	Choices      []string

	parent *Element
}

// NewAttribute creates an attribute, validating the default value and choices against its type
func NewAttribute(name string, dataType DataType, isRequired bool, defaultValue string, choices []string) (*Attribute, error) {
	if err := validateNewName(name, "attribute"); err != nil {
		return nil, err
	}
	attr := &Attribute{
		ID:           uuid.New().String(),
		Name:         name,
		DataType:     dataType,
		IsRequired:   isRequired,
		DefaultValue: defaultValue,
		Choices:      normaliseChoices(choices),
	}
	if err := attr.validateDefinition(); err != nil {
		return nil, err
	}
	return attr, nil
}

func normaliseChoices(choices []string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, c := range choices {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

func (a *Attribute) validateDefinition() error {
	if _, err := ParseDataType(string(a.DataType)); err != nil {
		return err
	}
	for _, choice := range a.Choices {
		if _, err := a.coerceType(choice); err != nil {
			return errs.Validation("the choice '%s' of attribute '%s' is not a valid %s", choice, a.Name, a.DataType)
		}
	}
	if a.DefaultValue != "" {
		if _, err := a.coerceType(a.DefaultValue); err != nil {
			return errs.Validation("the default value '%s' of attribute '%s' is not a valid %s", a.DefaultValue, a.Name, a.DataType)
		}
		if !a.isChoice(a.DefaultValue) {
			return errs.Validation("the default value '%s' of attribute '%s' is not one of its choices: %s", a.DefaultValue, a.Name, strings.Join(a.Choices, ", "))
		}
	}
	return nil
}

// Parent returns the element that owns the attribute
func (a *Attribute) Parent() *Element {
	return a.parent
}

// HasChoices reports whether the attribute is restricted to a closed set of values
func (a *Attribute) HasChoices() bool {
	return len(a.Choices) > 0
}

func (a *Attribute) isChoice(value string) bool {
	if !a.HasChoices() {
		return true
	}
	for _, c := range a.Choices {
		if c == value {
			return true
		}
	}
	return false
}

func (a *Attribute) coerceType(value string) (interface{}, error) {
	switch a.DataType {
	case DataTypeBool:
		return strconv.ParseBool(strings.TrimSpace(value))
	case DataTypeInt:
		return strconv.Atoi(strings.TrimSpace(value))
	case DataTypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	case DataTypeDateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("not a date time")
	default:
		return value, nil
	}
}

// Coerce converts text into a typed value and validates it against the attribute.
// An empty value for an optional attribute yields nil.
func (a *Attribute) Coerce(value string) (interface{}, error) {
	if value == "" {
		if a.IsRequired {
			return nil, errs.Validation("the attribute '%s' requires a value", a.Name)
		}
		return nil, nil
	}
	typed, err := a.coerceType(value)
	if err != nil {
		return nil, errs.Validation("the value '%s' of attribute '%s' is not a valid %s", value, a.Name, a.DataType)
	}
	if !a.isChoice(value) {
		return nil, errs.Validation("the value '%s' of attribute '%s' is not one of its choices: %s", value, a.Name, strings.Join(a.Choices, ", "))
	}
	return typed, nil
}

// CoerceAny converts an already-typed or persisted value into the attribute's type
func (a *Attribute) CoerceAny(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	return a.Coerce(FormatValue(value))
}

// ValidateValue checks a typed value against the attribute's type, requirement and choices
func (a *Attribute) ValidateValue(value interface{}) error {
	if value == nil {
		if a.IsRequired {
			return errs.Validation("the attribute '%s' requires a value", a.Name)
		}
		return nil
	}
	_, err := a.Coerce(FormatValue(value))
	return err
}

// DefaultTypedValue returns the default value converted to the attribute's type, or nil
func (a *Attribute) DefaultTypedValue() interface{} {
	if a.DefaultValue == "" {
		return nil
	}
	typed, err := a.coerceType(a.DefaultValue)
	if err != nil {
		return nil
	}
	return typed
}

// FormatValue renders a typed attribute value as text
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// AttributeUpdate holds the optional changes to an attribute
type AttributeUpdate struct {
	Name         *string
	DataType     *DataType
	IsRequired   *bool
	DefaultValue *string
	Choices      *[]string
}
