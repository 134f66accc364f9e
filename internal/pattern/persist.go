package pattern

import (
	"fmt"

	"github.com/n1rna/automate/internal/persist"
)

// Type names registered with the persistence factory
const (
	TypePatternDefinition = "PatternDefinition"
	TypeElement           = "Element"
	TypeAttribute         = "Attribute"
	TypeAutomation        = "Automation"
	TypeCodeTemplate      = "CodeTemplate"
	TypeToolkitVersion    = "ToolkitVersion"
)

// Register adds the schema tree rehydrators to a factory
func Register(f *persist.Factory) {
	f.Register(TypePatternDefinition, rehydratePattern)
	f.Register(TypeElement, rehydrateElement)
	f.Register(TypeAttribute, rehydrateAttribute)
	f.Register(TypeAutomation, rehydrateAutomation)
	f.Register(TypeCodeTemplate, rehydrateCodeTemplate)
	f.Register(TypeToolkitVersion, rehydrateToolkitVersion)
}

func clonePattern(p *PatternDefinition) (*PatternDefinition, error) {
	f := persist.NewFactory()
	Register(f)
	return persist.Clone[*PatternDefinition](f, TypePatternDefinition, p)
}

// Dehydrate implements persist.Persistable
func (p *PatternDefinition) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", p.ID)
	props.Add("Name", p.Name)
	props.Add("DisplayName", p.DisplayName)
	props.Add("Description", p.Description)
	if p.ToolkitVersion != nil {
		props.Add("ToolkitVersion", p.ToolkitVersion.Dehydrate())
	}
	dehydrateMembers(&props, &p.Element)
	return props
}

// Dehydrate implements persist.Persistable
func (e *Element) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", e.ID)
	props.Add("Name", e.Name)
	props.Add("DisplayName", e.DisplayName)
	props.Add("Description", e.Description)
	props.Add("Cardinality", string(e.Cardinality))
	props.Add("AutoCreate", e.AutoCreate)
	dehydrateMembers(&props, e)
	return props
}

func dehydrateMembers(props *persist.Properties, e *Element) {
	templates := make([]persist.Properties, 0, len(e.CodeTemplates))
	for _, tmpl := range e.CodeTemplates {
		templates = append(templates, tmpl.Dehydrate())
	}
	automations := make([]persist.Properties, 0, len(e.Automations))
	for _, auto := range e.Automations {
		automations = append(automations, auto.Dehydrate())
	}
	attributes := make([]persist.Properties, 0, len(e.Attributes))
	for _, attr := range e.Attributes {
		attributes = append(attributes, attr.Dehydrate())
	}
	elements := make([]persist.Properties, 0, len(e.Elements))
	for _, child := range e.Elements {
		elements = append(elements, child.Dehydrate())
	}
	props.Add("CodeTemplates", templates)
	props.Add("Automations", automations)
	props.Add("Attributes", attributes)
	props.Add("Elements", elements)
}

// Dehydrate implements persist.Persistable
func (a *Attribute) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", a.ID)
	props.Add("Name", a.Name)
	props.Add("DataType", string(a.DataType))
	props.Add("IsRequired", a.IsRequired)
	if a.DefaultValue != "" {
		props.Add("DefaultValue", a.DefaultValue)
	}
	if len(a.Choices) > 0 {
		props.Add("Choices", append([]string{}, a.Choices...))
	}
	return props
}

// Dehydrate implements persist.Persistable. Variant fields go into the generic Metadata map.
func (a *Automation) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", a.ID)
	props.Add("Name", a.Name)
	props.Add("Type", string(a.Type()))
	if a.Spec != nil {
		props.Add("Metadata", a.Spec.metadata())
	}
	return props
}

// Dehydrate implements persist.Persistable
func (c *CodeTemplate) Dehydrate() persist.Properties {
	meta := persist.NewProperties()
	meta.Add("OriginalFilePath", c.OriginalFilePath)
	meta.Add("OriginalFileExtension", c.OriginalFileExtension)
	meta.Add("LastModifiedUtc", c.LastModifiedUtc)

	props := persist.NewProperties()
	props.Add("Id", c.ID)
	props.Add("Name", c.Name)
	props.Add("Metadata", meta)
	return props
}

// Dehydrate implements persist.Persistable
func (tv *ToolkitVersion) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Current", tv.Current)
	props.Add("LastChanges", tv.LastChanges.String())
	log := make([]persist.Properties, 0, len(tv.ChangeLog))
	for _, entry := range tv.ChangeLog {
		item := persist.NewProperties()
		item.Add("Change", entry.Change.String())
		item.Add("Description", entry.Description)
		log = append(log, item)
	}
	props.Add("ChangeLog", log)
	return props
}

func rehydratePattern(props persist.Properties, f *persist.Factory) (interface{}, error) {
	p := &PatternDefinition{
		Element: Element{
			ID:          props.String("Id"),
			Name:        props.String("Name"),
			DisplayName: props.String("DisplayName"),
			Description: props.String("Description"),
			Cardinality: CardinalityOne,
			AutoCreate:  true,
		},
	}
	if p.ID == "" {
		return nil, fmt.Errorf("pattern has no id")
	}

	if versionProps, ok := props.Object("ToolkitVersion"); ok {
		tv, err := persist.Rehydrate[*ToolkitVersion](f, TypeToolkitVersion, versionProps)
		if err != nil {
			return nil, err
		}
		p.ToolkitVersion = tv
	} else {
		p.ToolkitVersion = NewToolkitVersion()
	}

	if err := rehydrateMembers(props, &p.Element, f); err != nil {
		return nil, err
	}
	p.relink()
	return p, nil
}

func rehydrateElement(props persist.Properties, f *persist.Factory) (interface{}, error) {
	cardinality, err := ParseCardinality(props.String("Cardinality"))
	if err != nil {
		return nil, err
	}
	e := &Element{
		ID:          props.String("Id"),
		Name:        props.String("Name"),
		DisplayName: props.String("DisplayName"),
		Description: props.String("Description"),
		Cardinality: cardinality,
		AutoCreate:  props.Bool("AutoCreate"),
	}
	if e.ID == "" {
		return nil, fmt.Errorf("element %s has no id", e.Name)
	}
	if err := rehydrateMembers(props, e, f); err != nil {
		return nil, err
	}
	return e, nil
}

func rehydrateMembers(props persist.Properties, e *Element, f *persist.Factory) error {
	for _, item := range props.Objects("CodeTemplates") {
		tmpl, err := persist.Rehydrate[*CodeTemplate](f, TypeCodeTemplate, item)
		if err != nil {
			return err
		}
		e.CodeTemplates = append(e.CodeTemplates, tmpl)
	}
	for _, item := range props.Objects("Automations") {
		auto, err := persist.Rehydrate[*Automation](f, TypeAutomation, item)
		if err != nil {
			return err
		}
		e.Automations = append(e.Automations, auto)
	}
	for _, item := range props.Objects("Attributes") {
		attr, err := persist.Rehydrate[*Attribute](f, TypeAttribute, item)
		if err != nil {
			return err
		}
		e.Attributes = append(e.Attributes, attr)
	}
	for _, item := range props.Objects("Elements") {
		child, err := persist.Rehydrate[*Element](f, TypeElement, item)
		if err != nil {
			return err
		}
		e.Elements = append(e.Elements, child)
	}
	e.attach(e.parent, e.pattern)
	return nil
}

func rehydrateAttribute(props persist.Properties, _ *persist.Factory) (interface{}, error) {
	dataType, err := ParseDataType(props.String("DataType"))
	if err != nil {
		return nil, err
	}
	return &Attribute{
		ID:           props.String("Id"),
		Name:         props.String("Name"),
		DataType:     dataType,
		IsRequired:   props.Bool("IsRequired"),
		DefaultValue: props.String("DefaultValue"),
		Choices:      props.Strings("Choices"),
	}, nil
}

func rehydrateAutomation(props persist.Properties, _ *persist.Factory) (interface{}, error) {
	automationType := AutomationType(props.String("Type"))
	meta, _ := props.Object("Metadata")
	spec := specFromMetadata(automationType, meta)
	if spec == nil {
		return nil, fmt.Errorf("automation %s has unknown type '%s'", props.String("Name"), automationType)
	}
	return &Automation{
		ID:   props.String("Id"),
		Name: props.String("Name"),
		Spec: spec,
	}, nil
}

func rehydrateCodeTemplate(props persist.Properties, _ *persist.Factory) (interface{}, error) {
	meta, _ := props.Object("Metadata")
	return &CodeTemplate{
		ID:                    props.String("Id"),
		Name:                  props.String("Name"),
		OriginalFilePath:      meta.String("OriginalFilePath"),
		OriginalFileExtension: meta.String("OriginalFileExtension"),
		LastModifiedUtc:       meta.Time("LastModifiedUtc"),
	}, nil
}

func rehydrateToolkitVersion(props persist.Properties, _ *persist.Factory) (interface{}, error) {
	tv := &ToolkitVersion{
		Current:     props.String("Current"),
		LastChanges: ParseVersionChange(props.String("LastChanges")),
	}
	if tv.Current == "" {
		tv.Current = InitialVersion
	}
	for _, item := range props.Objects("ChangeLog") {
		tv.ChangeLog = append(tv.ChangeLog, VersionChangeEntry{
			Change:      ParseVersionChange(item.String("Change")),
			Description: item.String("Description"),
		})
	}
	return tv, nil
}
