package pattern

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n1rna/automate/internal/errs"
)

// Cardinality describes how many instances of an element a draft may hold
type Cardinality string

const (
	CardinalityOne        Cardinality = "One"
	CardinalityZeroOrOne  Cardinality = "ZeroOrOne"
	CardinalityOneOrMany  Cardinality = "OneOrMany"
	CardinalityZeroOrMany Cardinality = "ZeroOrMany"
)

// ParseCardinality parses a cardinality case-insensitively; empty means One
func ParseCardinality(s string) (Cardinality, error) {
	if s == "" {
		return CardinalityOne, nil
	}
	for _, c := range []Cardinality{CardinalityOne, CardinalityZeroOrOne, CardinalityOneOrMany, CardinalityZeroOrMany} {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", errs.Validation("the cardinality '%s' is not supported, use One, ZeroOrOne, OneOrMany or ZeroOrMany", s)
}

// IsCollection reports whether the cardinality allows many instances
func (c Cardinality) IsCollection() bool {
	return c == CardinalityOneOrMany || c == CardinalityZeroOrMany
}

// IsRequired reports whether at least one instance must exist
func (c Cardinality) IsRequired() bool {
	return c == CardinalityOne || c == CardinalityOneOrMany
}

// Element is a node of the schema tree. The pattern itself is the root element.
type Element struct {
	ID          string
	Name        string
	DisplayName string
	Description string
	Cardinality Cardinality
	AutoCreate  bool

	Elements      []*Element
	Attributes    []*Attribute
	Automations   []*Automation
	CodeTemplates []*CodeTemplate

	parent  *Element
	pattern *PatternDefinition
}

// ElementOptions configures a new element
type ElementOptions struct {
	Cardinality Cardinality
	AutoCreate  bool
	DisplayName string
	Description string
}

// ElementUpdate holds the optional changes to an element
type ElementUpdate struct {
	Name        *string
	DisplayName *string
	Description *string
	Cardinality *Cardinality
	AutoCreate  *bool
}

// Parent returns the owning element, or nil for the pattern root
func (e *Element) Parent() *Element {
	return e.parent
}

// IsRoot reports whether the element is the pattern itself
func (e *Element) IsRoot() bool {
	return e.parent == nil
}

// IsCollection reports whether the element holds many instances
func (e *Element) IsCollection() bool {
	return e.Cardinality.IsCollection()
}

// Pattern returns the pattern the element belongs to
func (e *Element) Pattern() *PatternDefinition {
	return e.pattern
}

// Path returns the dotted schema path of the element, starting at the pattern name
func (e *Element) Path() string {
	var names []string
	for node := e; node != nil; node = node.parent {
		names = append([]string{node.Name}, names...)
	}
	return "{" + strings.Join(names, ".") + "}"
}

func (e *Element) recordChange(change VersionChange, format string, args ...interface{}) {
	if e.pattern == nil || e.pattern.ToolkitVersion == nil {
		return
	}
	e.pattern.ToolkitVersion.RegisterChange(change, format, args...)
}

// attach links a subtree to its parent and pattern
func (e *Element) attach(parent *Element, p *PatternDefinition) {
	e.parent = parent
	e.pattern = p
	for _, attr := range e.Attributes {
		attr.parent = e
	}
	for _, auto := range e.Automations {
		auto.parent = e
	}
	for _, tmpl := range e.CodeTemplates {
		tmpl.parent = e
	}
	for _, child := range e.Elements {
		child.attach(e, p)
	}
}

// FindElement returns the direct child element with the given name (case-insensitive)
func (e *Element) FindElement(name string) *Element {
	for _, child := range e.Elements {
		if strings.EqualFold(child.Name, name) {
			return child
		}
	}
	return nil
}

// FindAttribute returns the attribute with the given name (case-insensitive)
func (e *Element) FindAttribute(name string) *Attribute {
	for _, attr := range e.Attributes {
		if strings.EqualFold(attr.Name, name) {
			return attr
		}
	}
	return nil
}

// FindAutomation returns the automation of this element with the given id or name
func (e *Element) FindAutomation(idOrName string) *Automation {
	for _, auto := range e.Automations {
		if auto.ID == idOrName || strings.EqualFold(auto.Name, idOrName) {
			return auto
		}
	}
	return nil
}

// FindCodeTemplate returns the code template of this element with the given id or name
func (e *Element) FindCodeTemplate(idOrName string) *CodeTemplate {
	for _, tmpl := range e.CodeTemplates {
		if tmpl.ID == idOrName || strings.EqualFold(tmpl.Name, idOrName) {
			return tmpl
		}
	}
	return nil
}

// AddElement adds a child element
func (e *Element) AddElement(name string, opts ElementOptions) (*Element, error) {
	if err := e.validateMemberName(name, "element", ""); err != nil {
		return nil, err
	}
	cardinality, err := ParseCardinality(string(opts.Cardinality))
	if err != nil {
		return nil, err
	}

	child := &Element{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: opts.DisplayName,
		Description: opts.Description,
		Cardinality: cardinality,
		AutoCreate:  opts.AutoCreate,
	}
	child.attach(e, e.pattern)
	e.Elements = append(e.Elements, child)

	e.recordChange(NonBreaking, "added element '%s' to '%s'", name, e.Name)
	return child, nil
}

// UpdateElement changes a direct child element
func (e *Element) UpdateElement(name string, update ElementUpdate) (*Element, error) {
	child := e.FindElement(name)
	if child == nil {
		return nil, errs.NotFound("the element '%s' does not exist on '%s'", name, e.Name)
	}

	newCardinality := child.Cardinality
	if update.Cardinality != nil {
		parsed, err := ParseCardinality(string(*update.Cardinality))
		if err != nil {
			return nil, err
		}
		newCardinality = parsed
	}
	if update.Name != nil && *update.Name != child.Name {
		if err := e.validateMemberName(*update.Name, "element", child.ID); err != nil {
			return nil, err
		}
	}

	if update.Name != nil && *update.Name != child.Name {
		e.recordChange(Breaking, "renamed element '%s' to '%s'", child.Name, *update.Name)
		child.Name = *update.Name
	}
	if newCardinality != child.Cardinality {
		e.recordChange(Breaking, "changed cardinality of element '%s' from %s to %s", child.Name, child.Cardinality, newCardinality)
		child.Cardinality = newCardinality
	}
	if update.AutoCreate != nil && *update.AutoCreate != child.AutoCreate {
		child.AutoCreate = *update.AutoCreate
		e.recordChange(NonBreaking, "changed auto-create of element '%s'", child.Name)
	}
	if update.DisplayName != nil && *update.DisplayName != child.DisplayName {
		child.DisplayName = *update.DisplayName
		e.recordChange(NonBreaking, "changed display name of element '%s'", child.Name)
	}
	if update.Description != nil && *update.Description != child.Description {
		child.Description = *update.Description
		e.recordChange(NonBreaking, "changed description of element '%s'", child.Name)
	}
	return child, nil
}

// DeleteElement removes a direct child element and its whole subtree
func (e *Element) DeleteElement(name string) error {
	for i, child := range e.Elements {
		if !strings.EqualFold(child.Name, name) {
			continue
		}
		if err := e.checkSubtreeUnreferenced(child); err != nil {
			return err
		}
		e.Elements = append(e.Elements[:i], e.Elements[i+1:]...)
		child.parent = nil
		e.recordChange(Breaking, "deleted element '%s' from '%s'", child.Name, e.Name)
		return nil
	}
	return errs.NotFound("the element '%s' does not exist on '%s'", name, e.Name)
}

// checkSubtreeUnreferenced rejects deleting a subtree whose commands are launched from elsewhere
func (e *Element) checkSubtreeUnreferenced(subtree *Element) error {
	if e.pattern == nil {
		return nil
	}
	inside := make(map[string]bool)
	_ = Walk(subtree, func(n Node) error {
		if n.Automation != nil {
			inside[n.Automation.ID] = true
		}
		return nil
	})
	for _, auto := range e.pattern.AllAutomations() {
		lp, ok := auto.LaunchPoint()
		if !ok || inside[auto.ID] {
			continue
		}
		for _, id := range lp.CommandIDs {
			if inside[id] {
				return errs.Validation("the element '%s' cannot be deleted, its automation is launched by '%s'", subtree.Name, auto.Name)
			}
		}
	}
	return nil
}

// AddAttribute adds an attribute
func (e *Element) AddAttribute(name string, dataType DataType, isRequired bool, defaultValue string, choices []string) (*Attribute, error) {
	if err := e.validateMemberName(name, "attribute", ""); err != nil {
		return nil, err
	}
	parsed, err := ParseDataType(string(dataType))
	if err != nil {
		return nil, err
	}
	attr, err := NewAttribute(name, parsed, isRequired, defaultValue, choices)
	if err != nil {
		return nil, err
	}
	attr.parent = e
	e.Attributes = append(e.Attributes, attr)

	e.recordChange(NonBreaking, "added attribute '%s' to '%s'", name, e.Name)
	return attr, nil
}

// UpdateAttribute changes an attribute. The whole change is validated before anything is applied.
func (e *Element) UpdateAttribute(name string, update AttributeUpdate) (*Attribute, error) {
	attr := e.FindAttribute(name)
	if attr == nil {
		return nil, errs.NotFound("the attribute '%s' does not exist on '%s'", name, e.Name)
	}

	candidate := *attr
	if update.Name != nil && *update.Name != attr.Name {
		if err := e.validateMemberName(*update.Name, "attribute", attr.ID); err != nil {
			return nil, err
		}
		candidate.Name = *update.Name
	}
	if update.DataType != nil {
		parsed, err := ParseDataType(string(*update.DataType))
		if err != nil {
			return nil, err
		}
		candidate.DataType = parsed
	}
	if update.IsRequired != nil {
		candidate.IsRequired = *update.IsRequired
	}
	if update.DefaultValue != nil {
		candidate.DefaultValue = *update.DefaultValue
	}
	if update.Choices != nil {
		candidate.Choices = normaliseChoices(*update.Choices)
	}
	if err := candidate.validateDefinition(); err != nil {
		return nil, err
	}

	if candidate.Name != attr.Name {
		e.recordChange(Breaking, "renamed attribute '%s' to '%s'", attr.Name, candidate.Name)
	}
	if candidate.DataType != attr.DataType {
		e.recordChange(Breaking, "changed data type of attribute '%s' from %s to %s", candidate.Name, attr.DataType, candidate.DataType)
	}
	if candidate.IsRequired != attr.IsRequired {
		if candidate.IsRequired {
			e.recordChange(Breaking, "attribute '%s' is now required", candidate.Name)
		} else {
			e.recordChange(NonBreaking, "attribute '%s' is now optional", candidate.Name)
		}
	}
	if candidate.DefaultValue != attr.DefaultValue {
		e.recordChange(NonBreaking, "changed default value of attribute '%s'", candidate.Name)
	}
	if update.Choices != nil {
		added, removed := diffChoices(attr.Choices, candidate.Choices)
		if removed {
			e.recordChange(Breaking, "removed choices from attribute '%s'", candidate.Name)
		} else if added {
			e.recordChange(NonBreaking, "added choices to attribute '%s'", candidate.Name)
		}
	}

	*attr = candidate
	return attr, nil
}

// diffChoices reports whether choices were added to or removed from the closed set.
// Going from no choices (anything allowed) to some choices removes values.
func diffChoices(before, after []string) (added, removed bool) {
	if len(before) == 0 {
		return false, len(after) > 0
	}
	if len(after) == 0 {
		return true, false
	}
	inAfter := make(map[string]bool, len(after))
	for _, c := range after {
		inAfter[c] = true
	}
	inBefore := make(map[string]bool, len(before))
	for _, c := range before {
		inBefore[c] = true
		if !inAfter[c] {
			removed = true
		}
	}
	for _, c := range after {
		if !inBefore[c] {
			added = true
		}
	}
	return added, removed
}

// DeleteAttribute removes an attribute
func (e *Element) DeleteAttribute(name string) error {
	for i, attr := range e.Attributes {
		if strings.EqualFold(attr.Name, name) {
			e.Attributes = append(e.Attributes[:i], e.Attributes[i+1:]...)
			attr.parent = nil
			e.recordChange(Breaking, "deleted attribute '%s' from '%s'", attr.Name, e.Name)
			return nil
		}
	}
	return errs.NotFound("the attribute '%s' does not exist on '%s'", name, e.Name)
}

// AddCodeTemplate records a code template whose content was uploaded from filePath.
// An empty name is derived from the file name.
func (e *Element) AddCodeTemplate(name, filePath string, lastModified time.Time) (*CodeTemplate, error) {
	if name == "" {
		base := filepath.Base(filePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := e.validateCodeTemplateName(name); err != nil {
		return nil, err
	}
	tmpl := &CodeTemplate{
		ID:                    uuid.New().String(),
		Name:                  name,
		OriginalFilePath:      filePath,
		OriginalFileExtension: strings.TrimPrefix(filepath.Ext(filePath), "."),
		LastModifiedUtc:       lastModified.UTC(),
		parent:                e,
	}
	e.CodeTemplates = append(e.CodeTemplates, tmpl)

	e.recordChange(NonBreaking, "added code template '%s' to '%s'", name, e.Name)
	return tmpl, nil
}

// DeleteCodeTemplate removes a code template that no command uses
func (e *Element) DeleteCodeTemplate(name string) error {
	tmpl := e.FindCodeTemplate(name)
	if tmpl == nil {
		return errs.NotFound("the code template '%s' does not exist on '%s'", name, e.Name)
	}
	if e.pattern != nil {
		for _, auto := range e.pattern.AllAutomations() {
			if cmd, ok := auto.CodeTemplateCommand(); ok && cmd.CodeTemplateID == tmpl.ID {
				return errs.Validation("the code template '%s' cannot be deleted, it is used by command '%s'", tmpl.Name, auto.Name)
			}
		}
	}
	for i, candidate := range e.CodeTemplates {
		if candidate == tmpl {
			e.CodeTemplates = append(e.CodeTemplates[:i], e.CodeTemplates[i+1:]...)
			break
		}
	}
	tmpl.parent = nil
	e.recordChange(Breaking, "deleted code template '%s' from '%s'", tmpl.Name, e.Name)
	return nil
}

func (e *Element) addAutomation(name string, spec AutomationSpec) *Automation {
	auto := &Automation{
		ID:     uuid.New().String(),
		Name:   name,
		Spec:   spec,
		parent: e,
	}
	e.Automations = append(e.Automations, auto)
	e.recordChange(NonBreaking, "added %s '%s' to '%s'", spec.Type(), name, e.Name)
	return auto
}

// AddCodeTemplateCommand adds a command that renders one of this element's code templates
func (e *Element) AddCodeTemplateCommand(name, codeTemplate string, isOneOff bool, filePath string) (*Automation, error) {
	tmpl := e.FindCodeTemplate(codeTemplate)
	if tmpl == nil {
		return nil, errs.NotFound("the code template '%s' does not exist on '%s'", codeTemplate, e.Name)
	}
	if name == "" {
		name = "CodeTemplateCommand" + tmpl.Name
	}
	if err := e.validateAutomationName(name, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filePath) == "" {
		return nil, errs.Validation("the command '%s' needs a target file path", name)
	}
	return e.addAutomation(name, &CodeTemplateCommand{
		CodeTemplateID: tmpl.ID,
		IsOneOff:       isOneOff,
		FilePath:       filePath,
	}), nil
}

// AddCliCommand adds a command that runs a program
func (e *Element) AddCliCommand(name, applicationName, arguments string) (*Automation, error) {
	if err := e.validateAutomationName(name, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(applicationName) == "" {
		return nil, errs.Validation("the command '%s' needs an application name", name)
	}
	return e.addAutomation(name, &CliCommand{
		ApplicationName: applicationName,
		Arguments:       arguments,
	}), nil
}

// AddCommandLaunchPoint adds a launch point for commands anywhere in the pattern
func (e *Element) AddCommandLaunchPoint(name string, commands []string) (*Automation, error) {
	if err := e.validateAutomationName(name, ""); err != nil {
		return nil, err
	}
	ids, err := e.resolveCommandIDs(commands)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.Validation("the launch point '%s' needs at least one command", name)
	}
	lp := &CommandLaunchPoint{}
	lp.appendCommands(ids)
	return e.addAutomation(name, lp), nil
}

// UpdateCommandLaunchPoint adds and removes commands of a launch point on this element
func (e *Element) UpdateCommandLaunchPoint(name string, add, remove []string) (*Automation, error) {
	auto := e.FindAutomation(name)
	if auto == nil {
		return nil, errs.NotFound("the launch point '%s' does not exist on '%s'", name, e.Name)
	}
	lp, ok := auto.LaunchPoint()
	if !ok {
		return nil, errs.Validation("the automation '%s' is not a launch point", auto.Name)
	}
	addIDs, err := e.resolveCommandIDs(add)
	if err != nil {
		return nil, err
	}
	removeIDs, err := e.resolveCommandIDs(remove)
	if err != nil {
		return nil, err
	}

	candidate := &CommandLaunchPoint{CommandIDs: append([]string{}, lp.CommandIDs...)}
	added := candidate.appendCommands(addIDs)
	removed := candidate.removeCommands(removeIDs)
	if len(candidate.CommandIDs) == 0 {
		return nil, errs.Validation("the launch point '%s' needs at least one command", auto.Name)
	}

	lp.CommandIDs = candidate.CommandIDs
	if added > 0 {
		e.recordChange(NonBreaking, "added commands to launch point '%s'", auto.Name)
	}
	if removed > 0 {
		e.recordChange(Breaking, "removed commands from launch point '%s'", auto.Name)
	}
	return auto, nil
}

func (e *Element) resolveCommandIDs(commands []string) ([]string, error) {
	var ids []string
	for _, command := range commands {
		command = strings.TrimSpace(command)
		if command == "" {
			continue
		}
		auto, err := e.lookupAutomation(command)
		if err != nil {
			return nil, err
		}
		if auto.Type() == AutomationTypeCommandLaunchPoint {
			return nil, errs.Validation("the automation '%s' is a launch point and cannot be launched", auto.Name)
		}
		ids = append(ids, auto.ID)
	}
	return ids, nil
}

func (e *Element) lookupAutomation(idOrName string) (*Automation, error) {
	if e.pattern == nil {
		if auto := e.FindAutomation(idOrName); auto != nil {
			return auto, nil
		}
		return nil, errs.NotFound("the command '%s' does not exist", idOrName)
	}
	return e.pattern.FindAutomation(idOrName)
}

// DeleteAutomation removes an automation of this element. An automation referenced by a launch
// point is only removed when cascade is set, in which case the references are removed too.
func (e *Element) DeleteAutomation(name string, cascade bool) error {
	auto := e.FindAutomation(name)
	if auto == nil {
		return errs.NotFound("the automation '%s' does not exist on '%s'", name, e.Name)
	}

	var referencing []*Automation
	if e.pattern != nil {
		for _, candidate := range e.pattern.AllAutomations() {
			if lp, ok := candidate.LaunchPoint(); ok && lp.HasCommand(auto.ID) {
				referencing = append(referencing, candidate)
			}
		}
	}
	if len(referencing) > 0 && !cascade {
		return errs.Validation("the automation '%s' is launched by '%s', delete with cascade to remove the reference", auto.Name, referencing[0].Name)
	}
	for _, lpAuto := range referencing {
		lp, _ := lpAuto.LaunchPoint()
		lp.removeCommands([]string{auto.ID})
		e.recordChange(Breaking, "removed command '%s' from launch point '%s'", auto.Name, lpAuto.Name)
		// a launch point must always launch something
		if len(lp.CommandIDs) == 0 && lpAuto != auto {
			if owner := lpAuto.Parent(); owner != nil {
				owner.detachAutomation(lpAuto)
				e.recordChange(Breaking, "deleted launch point '%s' left without commands", lpAuto.Name)
			}
		}
	}

	e.detachAutomation(auto)
	e.recordChange(Breaking, "deleted %s '%s' from '%s'", auto.Type(), auto.Name, e.Name)
	return nil
}

func (e *Element) detachAutomation(auto *Automation) {
	for i, candidate := range e.Automations {
		if candidate == auto {
			e.Automations = append(e.Automations[:i], e.Automations[i+1:]...)
			break
		}
	}
	auto.parent = nil
}
