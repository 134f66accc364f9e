package draft

import (
	"fmt"

	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
	"github.com/n1rna/automate/internal/toolkit"
)

const (
	TypeDraftDefinition = "DraftDefinition"
	TypeDraftItem       = "DraftItem"
)

// Register adds the draft rehydrators, and those of toolkits, to a factory
func Register(f *persist.Factory) {
	toolkit.Register(f)
	f.Register(TypeDraftDefinition, rehydrateDraft)
	f.Register(TypeDraftItem, rehydrateItem)
}

// NewFactory returns a factory able to rehydrate drafts
func NewFactory() *persist.Factory {
	f := persist.NewFactory()
	Register(f)
	return f
}

// Dehydrate implements persist.Persistable
func (d *DraftDefinition) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", d.ID)
	props.Add("Name", d.Name)
	props.Add("Toolkit", d.Toolkit.Dehydrate())
	props.Add("Model", d.Model.Dehydrate())
	return props
}

// Dehydrate implements persist.Persistable. Child items are keyed by element name and
// values by attribute name.
func (d *DraftItem) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	if d.ID != "" {
		props.Add("Id", d.ID)
	}
	props.Add("SchemaId", d.schema.ID)
	props.Add("IsMaterialised", d.IsMaterialised)
	props.Add("IsCollectionItem", d.IsCollectionItem)

	values := persist.NewProperties()
	for _, attr := range d.schema.Attributes {
		if value, ok := d.values[attr.ID]; ok {
			values.Add(attr.Name, value)
		}
	}
	if len(values) > 0 {
		props.Add("Values", values)
	}

	if len(d.properties) > 0 {
		children := persist.NewProperties()
		for _, child := range d.properties {
			children.Add(child.schema.Name, child.Dehydrate())
		}
		props.Add("Properties", children)
	}
	if d.IsContainer() {
		items := make([]persist.Properties, 0, len(d.items))
		for _, item := range d.items {
			items = append(items, item.Dehydrate())
		}
		props.Add("Items", items)
	}
	return props
}

func rehydrateDraft(props persist.Properties, f *persist.Factory) (interface{}, error) {
	d := &DraftDefinition{
		ID:   props.String("Id"),
		Name: props.String("Name"),
	}
	toolkitProps, ok := props.Object("Toolkit")
	if !ok {
		return nil, fmt.Errorf("draft %s has no toolkit", d.Name)
	}
	tk, err := persist.Rehydrate[*toolkit.ToolkitDefinition](f, toolkit.TypeToolkitDefinition, toolkitProps)
	if err != nil {
		return nil, err
	}
	if tk.Pattern == nil {
		return nil, fmt.Errorf("draft %s has a toolkit without a pattern", d.Name)
	}
	d.Toolkit = tk

	modelProps, ok := props.Object("Model")
	if !ok {
		return nil, fmt.Errorf("draft %s has no model", d.Name)
	}
	model, err := persist.Rehydrate[*DraftItem](f, TypeDraftItem, modelProps)
	if err != nil {
		return nil, err
	}
	if err := model.bind(tk.Pattern.Root(), nil); err != nil {
		return nil, fmt.Errorf("failed to bind draft %s: %w", d.Name, err)
	}
	d.Model = model
	return d, nil
}

// rehydrateItem rebuilds an item that is not yet bound to its schema
func rehydrateItem(props persist.Properties, f *persist.Factory) (interface{}, error) {
	item := &DraftItem{
		ID:               props.String("Id"),
		IsMaterialised:   props.Bool("IsMaterialised"),
		IsCollectionItem: props.Bool("IsCollectionItem"),
		schemaID:         props.String("SchemaId"),
		values:           make(map[string]interface{}),
	}
	item.rawValues, _ = props.Object("Values")

	if children, ok := props.Object("Properties"); ok {
		for _, name := range children.Names() {
			childProps, _ := children.Object(name)
			child, err := persist.Rehydrate[*DraftItem](f, TypeDraftItem, childProps)
			if err != nil {
				return nil, err
			}
			item.properties = append(item.properties, child)
		}
	}
	for _, itemProps := range props.Objects("Items") {
		instance, err := persist.Rehydrate[*DraftItem](f, TypeDraftItem, itemProps)
		if err != nil {
			return nil, err
		}
		item.items = append(item.items, instance)
	}
	return item, nil
}

// bind attaches a rehydrated item to its schema, converting its values and adding placeholders
// for child elements missing from the persisted form
func (d *DraftItem) bind(schema *pattern.Element, parent *DraftItem) error {
	if d.schemaID != "" && d.schemaID != schema.ID {
		return fmt.Errorf("item %s is bound to element %s, not %s", d.ID, d.schemaID, schema.Name)
	}
	d.schema = schema
	d.parent = parent
	d.schemaID = ""

	for _, name := range d.rawValues.Names() {
		attr := schema.FindAttribute(name)
		if attr == nil {
			continue
		}
		raw, _ := d.rawValues.Get(name)
		value, err := attr.CoerceAny(raw)
		if err != nil {
			return err
		}
		if value != nil {
			d.values[attr.ID] = value
		}
	}
	d.rawValues = nil

	if d.IsContainer() {
		d.properties = nil
		for _, item := range d.items {
			if err := item.bind(schema, d); err != nil {
				return err
			}
		}
		return nil
	}

	persisted := make(map[string]*DraftItem, len(d.properties))
	for _, child := range d.properties {
		persisted[child.schemaID] = child
	}
	d.properties = nil
	for _, childSchema := range schema.Elements {
		child, ok := persisted[childSchema.ID]
		if !ok {
			d.properties = append(d.properties, newDraftItem(childSchema, d, false))
			continue
		}
		if err := child.bind(childSchema, d); err != nil {
			return err
		}
		d.properties = append(d.properties, child)
	}
	return nil
}
