// Package pattern implements the authored schema tree of a generation pattern: elements,
// attributes, automation and code templates, together with the version history that
// classifies every structural change as breaking or non-breaking.
package pattern

import (
	"strings"

	"github.com/google/uuid"

	"github.com/n1rna/automate/internal/errs"
)

// PatternDefinition is the root of the schema tree
type PatternDefinition struct {
	Element
	ToolkitVersion *ToolkitVersion
}

// NewPattern creates an empty pattern at the initial version
func NewPattern(name string) (*PatternDefinition, error) {
	if err := validateNewName(name, "pattern"); err != nil {
		return nil, err
	}
	p := &PatternDefinition{
		Element: Element{
			ID:          uuid.New().String(),
			Name:        name,
			Cardinality: CardinalityOne,
			AutoCreate:  true,
		},
		ToolkitVersion: NewToolkitVersion(),
	}
	p.relink()
	return p, nil
}

// Root returns the root element of the schema tree
func (p *PatternDefinition) Root() *Element {
	return &p.Element
}

// relink restores parent and pattern back-references across the tree
func (p *PatternDefinition) relink() {
	p.Element.attach(nil, p)
}

// Rename renames the pattern
func (p *PatternDefinition) Rename(name string) error {
	if err := validateNewName(name, "pattern"); err != nil {
		return err
	}
	if name == p.Name {
		return nil
	}
	p.recordChange(Breaking, "renamed pattern '%s' to '%s'", p.Name, name)
	p.Name = name
	return nil
}

// FindElementByID returns the element (or root) with the given id anywhere in the tree
func (p *PatternDefinition) FindElementByID(id string) *Element {
	var found *Element
	_ = Walk(p.Root(), func(n Node) error {
		if n.Kind == NodeElement && n.Element.ID == id {
			found = n.Element
			return errStopWalk
		}
		return nil
	})
	return found
}

// FindAutomation finds an automation anywhere in the tree by id, or else by a unique name
func (p *PatternDefinition) FindAutomation(idOrName string) (*Automation, error) {
	var byName []*Automation
	for _, auto := range p.AllAutomations() {
		if auto.ID == idOrName {
			return auto, nil
		}
		if strings.EqualFold(auto.Name, idOrName) {
			byName = append(byName, auto)
		}
	}
	switch len(byName) {
	case 0:
		return nil, errs.NotFound("the automation '%s' does not exist in pattern '%s'", idOrName, p.Name)
	case 1:
		return byName[0], nil
	default:
		return nil, errs.Validation("more than one automation is named '%s', use its id instead", idOrName)
	}
}

// FindCodeTemplateByID returns a code template anywhere in the tree
func (p *PatternDefinition) FindCodeTemplateByID(id string) *CodeTemplate {
	for _, tmpl := range p.AllCodeTemplates() {
		if tmpl.ID == id {
			return tmpl
		}
	}
	return nil
}

// AllAutomations lists every automation in walk order
func (p *PatternDefinition) AllAutomations() []*Automation {
	var result []*Automation
	_ = Walk(p.Root(), func(n Node) error {
		if n.Kind == NodeAutomation {
			result = append(result, n.Automation)
		}
		return nil
	})
	return result
}

// AllCodeTemplates lists every code template in walk order
func (p *PatternDefinition) AllCodeTemplates() []*CodeTemplate {
	var result []*CodeTemplate
	_ = Walk(p.Root(), func(n Node) error {
		if n.Kind == NodeCodeTemplate {
			result = append(result, n.CodeTemplate)
		}
		return nil
	})
	return result
}

// Clone deep-copies the pattern through its persisted form
func (p *PatternDefinition) Clone() (*PatternDefinition, error) {
	return clonePattern(p)
}
