package draft

const (
	keyID            = "Id"
	keyConfigurePath = "ConfigurePath"
	keyItems         = "Items"
	keyParent        = "Parent"
)

// Transformer renders a logic-enabled text template against a configuration
type Transformer interface {
	Transform(description, template string, data interface{}) (string, error)
}

// Configuration exports the materialised configuration of the item as nested maps: its id,
// path and attribute values, one map per materialised child element, and the instances of a
// collection under Items. With ancestry, every map also links its owning item under Parent,
// which makes the maps cyclic.
func (d *DraftItem) Configuration(includeAncestry bool) map[string]interface{} {
	if !includeAncestry || !d.IsMaterialised {
		return d.configuration(nil, nil)
	}
	index := make(map[*DraftItem]map[string]interface{})
	d.root().configuration(nil, index)
	if config, ok := index[d]; ok {
		return config
	}
	return d.configuration(nil, nil)
}

func (d *DraftItem) configuration(parent map[string]interface{}, index map[*DraftItem]map[string]interface{}) map[string]interface{} {
	config := map[string]interface{}{
		keyID:            d.ID,
		keyConfigurePath: d.ConfigurePath(),
	}
	if index != nil {
		index[d] = config
		if parent != nil {
			config[keyParent] = parent
		}
	}

	if d.IsContainer() {
		items := make([]interface{}, 0, len(d.items))
		for _, item := range d.items {
			// instances belong to the item holding the container
			items = append(items, item.configuration(parent, index))
		}
		config[keyItems] = items
		return config
	}

	for _, attr := range d.schema.Attributes {
		if value, ok := d.values[attr.ID]; ok {
			config[attr.Name] = value
		} else {
			config[attr.Name] = ""
		}
	}
	for _, child := range d.properties {
		if child.IsMaterialised {
			config[child.schema.Name] = child.configuration(config, index)
		}
	}
	return config
}

// ResolveExpression renders text as a template against the configuration of the item, so
// free text can refer to {{attribute}} or {{element.Parent.sibling.attribute}}
func ResolveExpression(engine Transformer, description, text string, item *DraftItem) (string, error) {
	return engine.Transform(description, text, item.Configuration(true))
}
