package draft

import (
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/toolkit"
	"github.com/n1rna/automate/internal/version"
)

// DraftUpgradeResult is the outcome of upgrading a draft to a newer toolkit
type DraftUpgradeResult struct {
	FromVersion string
	ToVersion   string
	*toolkit.MigrationResult
}

// Upgrade rebinds the draft to a newer version of its toolkit and migrates its items.
//
// A draft already at the toolkit version is left alone. A draft ahead of the toolkit cannot be
// upgraded. Breaking changes are logged in the result and do not stop the upgrade; the caller
// decides whether to keep it.
func (d *DraftDefinition) Upgrade(latest *toolkit.ToolkitDefinition) (*DraftUpgradeResult, error) {
	result := &DraftUpgradeResult{
		FromVersion:     d.Toolkit.Version,
		ToVersion:       latest.Version,
		MigrationResult: toolkit.NewMigrationResult(),
	}

	current, err := version.Parse(d.Toolkit.Version)
	if err != nil {
		return nil, errs.Compatibility("the draft toolkit version '%s' is not a valid semantic version", d.Toolkit.Version)
	}
	target, err := version.Parse(latest.Version)
	if err != nil {
		return nil, errs.Compatibility("the installed toolkit version '%s' is not a valid semantic version", latest.Version)
	}
	switch c := current.Compare(target); {
	case c > 0:
		return nil, errs.Compatibility("the draft was created with a newer version (%s) of the toolkit than the one installed (%s), install the newer toolkit", d.Toolkit.Version, latest.Version)
	case c == 0:
		return result, nil
	}

	d.Toolkit.MigratePattern(latest, result.MigrationResult)
	if !result.IsSuccess() {
		return result, nil
	}
	d.Model.migrate(d.Toolkit.Pattern.Root(), result.MigrationResult)
	return result, nil
}

// migrate rebinds the item and its subtree to the new schema, matching nodes by schema id
func (d *DraftItem) migrate(schema *pattern.Element, result *toolkit.MigrationResult) {
	previous := d.schema
	d.schema = schema
	logged := d.IsMaterialised

	if logged && !d.IsCollectionItem && previous.Name != schema.Name {
		result.Add(pattern.NonBreaking, "element '%s' was renamed to '%s'", previous.Name, schema.Name)
	}

	if d.IsContainer() {
		for _, item := range d.items {
			item.migrate(schema, result)
		}
		return
	}

	if logged {
		d.migrateValues(previous, schema, result)
	}

	existing := make(map[string]*DraftItem, len(d.properties))
	for _, child := range d.properties {
		existing[child.schema.ID] = child
	}

	properties := make([]*DraftItem, 0, len(schema.Elements))
	for _, childSchema := range schema.Elements {
		child, ok := existing[childSchema.ID]
		delete(existing, childSchema.ID)

		switch {
		case !ok:
			child = newDraftItem(childSchema, d, false)
			if d.IsMaterialised && childSchema.AutoCreate {
				child.materialise()
			}
			if logged {
				result.Add(pattern.NonBreaking, "element '%s' was added to '%s'", childSchema.Name, d.ConfigurePath())
			}
		case child.schema.IsCollection() != childSchema.IsCollection():
			wasMaterialised := child.IsMaterialised
			child = newDraftItem(childSchema, d, false)
			if d.IsMaterialised && (wasMaterialised || childSchema.AutoCreate) {
				child.materialise()
			}
			if wasMaterialised {
				result.Add(pattern.Breaking, "element '%s' changed between single and collection, its configuration was reset", childSchema.Name)
			}
		default:
			child.migrate(childSchema, result)
		}
		properties = append(properties, child)
	}
	for _, removed := range d.properties {
		if _, gone := existing[removed.schema.ID]; gone && removed.IsMaterialised {
			result.Add(pattern.Breaking, "element '%s' was removed from '%s', its configuration was discarded", removed.schema.Name, d.ConfigurePath())
		}
	}
	d.properties = properties
}

func (d *DraftItem) migrateValues(previous, schema *pattern.Element, result *toolkit.MigrationResult) {
	known := make(map[string]bool, len(previous.Attributes))
	for _, attr := range previous.Attributes {
		known[attr.ID] = true
	}

	for id, value := range d.values {
		var attr *pattern.Attribute
		for _, candidate := range schema.Attributes {
			if candidate.ID == id {
				attr = candidate
				break
			}
		}
		if attr == nil {
			delete(d.values, id)
			result.Add(pattern.Breaking, "attribute of '%s' was removed, its value '%s' was discarded", d.ConfigurePath(), pattern.FormatValue(value))
			continue
		}
		typed, err := attr.CoerceAny(value)
		if err != nil || typed == nil {
			delete(d.values, id)
			if def := attr.DefaultTypedValue(); def != nil {
				d.values[id] = def
			}
			result.Add(pattern.Breaking, "value '%s' of attribute '%s' of '%s' is no longer valid and was reset", pattern.FormatValue(value), attr.Name, d.ConfigurePath())
			continue
		}
		d.values[id] = typed
	}

	for _, attr := range schema.Attributes {
		if known[attr.ID] {
			continue
		}
		if def := attr.DefaultTypedValue(); def != nil {
			d.values[attr.ID] = def
			result.Add(pattern.NonBreaking, "attribute '%s' was added to '%s' with default value '%s'", attr.Name, d.ConfigurePath(), attr.DefaultValue)
		} else {
			result.Add(pattern.NonBreaking, "attribute '%s' was added to '%s'", attr.Name, d.ConfigurePath())
		}
	}
}
