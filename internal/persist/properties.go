// Package persist implements the dehydrate/rehydrate contract used to store every domain entity.
//
// Entities never serialize themselves to a wire format. They produce an ordered set of
// name/value Properties (Dehydrate) and are rebuilt from one by a rehydrate function
// registered in a Factory. The codec in this package turns Properties into indented JSON
// (or YAML for display) and back.
package persist

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Property is a single named value
type Property struct {
	Name  string
	Value interface{}
}

// Properties is an ordered set of named values.
//
// Values are scalars (string, bool, ints, floats, time.Time, []byte), []string,
// nested Properties, []Properties or []interface{} of those. Nil values are never stored.
type Properties []Property

// NewProperties creates an empty property set
func NewProperties() Properties {
	return Properties{}
}

// Add appends a named value, replacing any existing value with the same name.
// Nil values, nil slices and nil Properties are skipped.
func (p *Properties) Add(name string, value interface{}) {
	if isNil(value) {
		return
	}
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Name: name, Value: value})
}

func isNil(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case Properties:
		return v == nil
	case []Properties:
		return v == nil
	case []string:
		return v == nil
	case []interface{}:
		return v == nil
	case []byte:
		return v == nil
	}
	return false
}

// Get returns the raw value stored under name
func (p Properties) Get(name string) (interface{}, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Has reports whether a value is stored under name
func (p Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Names returns the property names in order
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for _, prop := range p {
		names = append(names, prop.Name)
	}
	return names
}

// String returns the string value stored under name, or "" when absent
func (p Properties) String(name string) string {
	v, ok := p.Get(name)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the boolean value stored under name, or false when absent
func (p Properties) Bool(name string) bool {
	v, ok := p.Get(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}

// Int returns the integer value stored under name, or 0 when absent
func (p Properties) Int(name string) int {
	v, ok := p.Get(name)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int(f)
		}
		return int(i)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// Time returns the time stored under name, or the zero time when absent or unparseable
func (p Properties) Time(name string) time.Time {
	v, ok := p.Get(name)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	}
	return time.Time{}
}

// Bytes returns the binary value stored under name (base64 in JSON)
func (p Properties) Bytes(name string) []byte {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		decoded, err := base64.StdEncoding.DecodeString(b)
		if err != nil {
			return nil
		}
		return decoded
	}
	return nil
}

// Strings returns the string list stored under name
func (p Properties) Strings(name string) []string {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []interface{}:
		result := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

// Object returns the nested property set stored under name
func (p Properties) Object(name string) (Properties, bool) {
	v, ok := p.Get(name)
	if !ok {
		return nil, false
	}
	obj, ok := v.(Properties)
	return obj, ok
}

// Objects returns the list of nested property sets stored under name
func (p Properties) Objects(name string) []Properties {
	v, ok := p.Get(name)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []Properties:
		return list
	case []interface{}:
		result := make([]Properties, 0, len(list))
		for _, item := range list {
			if obj, ok := item.(Properties); ok {
				result = append(result, obj)
			}
		}
		return result
	}
	return nil
}

// MarshalJSON writes the properties as a JSON object, preserving order
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal property %s: %w", prop.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving property order.
// Nested objects become Properties, arrays []interface{}, numbers json.Number; nulls are dropped.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}

	props, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*p = props
	return nil
}

func decodeObject(dec *json.Decoder) (Properties, error) {
	props := Properties{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected property name, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		props.Add(name, value)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return props, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			list := []interface{}{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if item != nil {
					list = append(list, item)
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// MarshalYAML renders the properties as an ordered YAML mapping
func (p Properties) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, prop := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: prop.Name}
		value := &yaml.Node{}
		if err := value.Encode(yamlValue(prop.Value)); err != nil {
			return nil, fmt.Errorf("failed to encode property %s: %w", prop.Name, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

func yamlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return v
}
