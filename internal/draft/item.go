package draft

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
)

// DraftItem is one node of the instance tree, bound to a schema element.
//
// Every item holds a placeholder for each child element of its schema, so the instance tree
// always mirrors the schema. A placeholder of a collection element is a container: it holds
// no placeholders itself, only the materialised instances in Items.
type DraftItem struct {
	ID               string
	IsMaterialised   bool
	IsCollectionItem bool

	schema     *pattern.Element
	parent     *DraftItem
	properties []*DraftItem
	items      []*DraftItem
	// values are keyed by attribute id
	values map[string]interface{}

	// set between rehydration and binding to a schema
	schemaID  string
	rawValues persist.Properties
}

func newDraftItem(schema *pattern.Element, parent *DraftItem, isCollectionItem bool) *DraftItem {
	item := &DraftItem{
		IsCollectionItem: isCollectionItem,
		schema:           schema,
		parent:           parent,
		values:           make(map[string]interface{}),
	}
	item.resetPlaceholders()
	return item
}

func (d *DraftItem) resetPlaceholders() {
	d.properties = nil
	if d.IsContainer() {
		return
	}
	for _, child := range d.schema.Elements {
		d.properties = append(d.properties, newDraftItem(child, d, false))
	}
}

// Schema returns the element the item is bound to
func (d *DraftItem) Schema() *pattern.Element {
	return d.schema
}

// Name returns the schema name of the item
func (d *DraftItem) Name() string {
	return d.schema.Name
}

// IsContainer reports whether the item holds the instances of a collection element
func (d *DraftItem) IsContainer() bool {
	return d.schema.IsCollection() && !d.IsCollectionItem
}

// Parent returns the item owning this one. Collection items are owned by the item holding
// their container, never by the container.
func (d *DraftItem) Parent() *DraftItem {
	if d.IsCollectionItem && d.parent != nil {
		return d.parent.parent
	}
	return d.parent
}

// Properties returns the placeholders of the child elements, in schema order
func (d *DraftItem) Properties() []*DraftItem {
	return d.properties
}

// Items returns the instances of a collection container
func (d *DraftItem) Items() []*DraftItem {
	return d.items
}

// Property returns the placeholder of a child element by name (case-insensitive)
func (d *DraftItem) Property(name string) *DraftItem {
	for _, child := range d.properties {
		if strings.EqualFold(child.schema.Name, name) {
			return child
		}
	}
	return nil
}

// Item returns the collection instance with the given id
func (d *DraftItem) Item(id string) *DraftItem {
	for _, item := range d.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Value returns the value of an attribute by name
func (d *DraftItem) Value(name string) (interface{}, bool) {
	attr := d.schema.FindAttribute(name)
	if attr == nil {
		return nil, false
	}
	value, ok := d.values[attr.ID]
	return value, ok
}

// Values returns the attribute values keyed by attribute name
func (d *DraftItem) Values() map[string]interface{} {
	result := make(map[string]interface{}, len(d.values))
	for _, attr := range d.schema.Attributes {
		if value, ok := d.values[attr.ID]; ok {
			result[attr.Name] = value
		}
	}
	return result
}

// ConfigurePath returns the instance path of the item, such as {pattern.element.<id>.child}
func (d *DraftItem) ConfigurePath() string {
	var segments []string
	for node := d; node != nil; node = node.parent {
		if node.IsCollectionItem {
			segments = append([]string{node.ID}, segments...)
			continue
		}
		segments = append([]string{node.schema.Name}, segments...)
	}
	return "{" + strings.Join(segments, ".") + "}"
}

// Materialise instantiates a placeholder: it gets an id, its attribute defaults, and every
// auto-create child is materialised with it
func (d *DraftItem) Materialise() (*DraftItem, error) {
	if d.IsMaterialised {
		if d.IsContainer() {
			return d, nil
		}
		return nil, errs.Validation("the element '%s' is already configured", d.ConfigurePath())
	}
	if d.parent != nil && !d.parent.IsMaterialised {
		return nil, errs.Validation("the element '%s' cannot be configured before its parent", d.ConfigurePath())
	}
	d.materialise()
	return d, nil
}

func (d *DraftItem) materialise() {
	d.ID = uuid.New().String()
	d.IsMaterialised = true
	d.applyDefaults()
	for _, child := range d.properties {
		if child.schema.AutoCreate && !child.IsMaterialised {
			child.materialise()
		}
	}
}

func (d *DraftItem) applyDefaults() {
	if d.IsContainer() {
		return
	}
	for _, attr := range d.schema.Attributes {
		if _, ok := d.values[attr.ID]; ok {
			continue
		}
		if value := attr.DefaultTypedValue(); value != nil {
			d.values[attr.ID] = value
		}
	}
}

// MaterialiseCollectionItem appends a new instance to a collection container, materialising
// the container if needed. Cardinality is only enforced by Validate.
func (d *DraftItem) MaterialiseCollectionItem() (*DraftItem, error) {
	if !d.IsContainer() {
		return nil, errs.Validation("the element '%s' is not a collection", d.ConfigurePath())
	}
	if !d.IsMaterialised {
		if _, err := d.Materialise(); err != nil {
			return nil, err
		}
	}
	item := newDraftItem(d.schema, d, true)
	item.materialise()
	d.items = append(d.items, item)
	return item, nil
}

// SetProperties assigns attribute values from text. Every key is checked before any value
// is assigned; an empty value clears an optional attribute.
func (d *DraftItem) SetProperties(properties map[string]string) error {
	if !d.IsMaterialised {
		return errs.Validation("the element '%s' has not been configured yet", d.ConfigurePath())
	}
	if d.IsContainer() {
		return errs.Validation("the collection '%s' has no properties, configure one of its items instead", d.ConfigurePath())
	}

	typed := make(map[string]interface{}, len(properties))
	for name, text := range properties {
		attr := d.schema.FindAttribute(name)
		if attr == nil {
			if d.schema.FindElement(name) != nil {
				return errs.Validation("'%s' is an element of '%s', not an attribute", name, d.schema.Name)
			}
			return errs.Validation("the element '%s' has no attribute named '%s'", d.schema.Name, name)
		}
		value, err := attr.Coerce(text)
		if err != nil {
			return err
		}
		typed[attr.ID] = value
	}

	for id, value := range typed {
		if value == nil {
			delete(d.values, id)
			continue
		}
		d.values[id] = value
	}
	return nil
}

// ResetAllProperties returns every attribute to its default value
func (d *DraftItem) ResetAllProperties() error {
	if !d.IsMaterialised || d.IsContainer() {
		return errs.Validation("the element '%s' has no properties to reset", d.ConfigurePath())
	}
	d.values = make(map[string]interface{})
	d.applyDefaults()
	return nil
}

// UnMaterialise reverts an item to a placeholder, discarding its configuration
func (d *DraftItem) UnMaterialise() error {
	if d.parent == nil {
		return errs.Validation("the root of the draft cannot be deleted")
	}
	if d.IsCollectionItem {
		return d.parent.DeleteCollectionItem(d.ID)
	}
	d.ID = ""
	d.IsMaterialised = false
	d.values = make(map[string]interface{})
	d.items = nil
	d.resetPlaceholders()
	return nil
}

// ClearCollectionItems removes every instance of a collection container
func (d *DraftItem) ClearCollectionItems() error {
	if !d.IsContainer() {
		return errs.Validation("the element '%s' is not a collection", d.ConfigurePath())
	}
	d.items = nil
	return nil
}

// DeleteCollectionItem removes one instance of a collection container
func (d *DraftItem) DeleteCollectionItem(id string) error {
	if !d.IsContainer() {
		return errs.Validation("the element '%s' is not a collection", d.ConfigurePath())
	}
	for i, item := range d.items {
		if item.ID == id {
			d.items = append(d.items[:i], d.items[i+1:]...)
			item.parent = nil
			return nil
		}
	}
	return errs.NotFound("the collection '%s' has no item '%s'", d.ConfigurePath(), id)
}

// ValidationResult is one problem found by Validate
type ValidationResult struct {
	Path    string
	Message string
}

// Validate checks the whole subtree and accumulates every problem found
func (d *DraftItem) Validate() []ValidationResult {
	var results []ValidationResult
	d.validate(&results)
	return results
}

func (d *DraftItem) validate(results *[]ValidationResult) {
	if !d.IsMaterialised {
		return
	}
	add := func(format string, args ...interface{}) {
		*results = append(*results, ValidationResult{
			Path:    d.ConfigurePath(),
			Message: fmt.Sprintf(format, args...),
		})
	}

	if d.IsContainer() {
		if d.schema.Cardinality == pattern.CardinalityOneOrMany && len(d.items) == 0 {
			add("the collection '%s' requires at least one item", d.schema.Name)
		}
		for _, item := range d.items {
			item.validate(results)
		}
		return
	}

	for _, attr := range d.schema.Attributes {
		if err := attr.ValidateValue(d.values[attr.ID]); err != nil {
			*results = append(*results, ValidationResult{Path: d.ConfigurePath(), Message: err.Error()})
		}
	}
	for _, child := range d.properties {
		if !child.IsMaterialised {
			if child.schema.Cardinality.IsRequired() {
				add("the element '%s' is required", child.schema.Name)
			}
			continue
		}
		child.validate(results)
	}
}

// Walk visits every materialised item of the subtree depth-first
func (d *DraftItem) Walk(fn func(*DraftItem) error) error {
	if !d.IsMaterialised {
		return nil
	}
	if err := fn(d); err != nil {
		return err
	}
	for _, child := range d.properties {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	for _, item := range d.items {
		if err := item.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
