package persist

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Persistable is implemented by every stored domain entity
type Persistable interface {
	Dehydrate() Properties
}

// RehydrateFunc rebuilds an entity from its properties. The factory is passed along so
// nested entities of other types can be rehydrated through the same dispatch table.
type RehydrateFunc func(props Properties, factory *Factory) (interface{}, error)

// Factory dispatches rehydration by declared type name
type Factory struct {
	rehydrators map[string]RehydrateFunc
}

// NewFactory creates an empty factory
func NewFactory() *Factory {
	return &Factory{
		rehydrators: make(map[string]RehydrateFunc),
	}
}

// Register adds a rehydrate function for a type name, replacing any previous one
func (f *Factory) Register(typeName string, fn RehydrateFunc) {
	f.rehydrators[typeName] = fn
}

// Registered reports whether a type name has a rehydrate function
func (f *Factory) Registered(typeName string) bool {
	_, ok := f.rehydrators[typeName]
	return ok
}

// Rehydrate rebuilds an entity of the declared type
func (f *Factory) Rehydrate(typeName string, props Properties) (interface{}, error) {
	fn, ok := f.rehydrators[typeName]
	if !ok {
		return nil, fmt.Errorf("no rehydrator registered for type %s", typeName)
	}
	return fn(props, f)
}

// Rehydrate rebuilds an entity of the declared type and asserts its Go type
func Rehydrate[T any](f *Factory, typeName string, props Properties) (T, error) {
	var zero T
	entity, err := f.Rehydrate(typeName, props)
	if err != nil {
		return zero, err
	}
	typed, ok := entity.(T)
	if !ok {
		return zero, fmt.Errorf("rehydrator for %s returned %T", typeName, entity)
	}
	return typed, nil
}

// Marshal dehydrates an entity into indented JSON
func Marshal(entity Persistable) ([]byte, error) {
	data, err := json.MarshalIndent(entity.Dehydrate(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// MarshalYAML dehydrates an entity into YAML, used for display only
func MarshalYAML(entity Persistable) ([]byte, error) {
	data, err := yaml.Marshal(entity.Dehydrate())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// Decode parses indented JSON into properties
func Decode(data []byte) (Properties, error) {
	var props Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return props, nil
}

// Unmarshal parses JSON and rehydrates an entity of the declared type
func Unmarshal[T any](f *Factory, typeName string, data []byte) (T, error) {
	var zero T
	props, err := Decode(data)
	if err != nil {
		return zero, err
	}
	return Rehydrate[T](f, typeName, props)
}

// Clone deep-copies an entity by round-tripping it through its persisted form
func Clone[T Persistable](f *Factory, typeName string, entity T) (T, error) {
	var zero T
	data, err := Marshal(entity)
	if err != nil {
		return zero, err
	}
	return Unmarshal[T](f, typeName, data)
}
