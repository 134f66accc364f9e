package pattern

import (
	"strings"

	"github.com/n1rna/automate/internal/persist"
)

// AutomationType identifies an automation variant
type AutomationType string

const (
	AutomationTypeCodeTemplateCommand AutomationType = "CodeTemplateCommand"
	AutomationTypeCliCommand          AutomationType = "CliCommand"
	AutomationTypeCommandLaunchPoint  AutomationType = "CommandLaunchPoint"
)

// AutomationSpec is the variant-specific part of an automation. The set of variants is closed:
// *CodeTemplateCommand, *CliCommand and *CommandLaunchPoint.
type AutomationSpec interface {
	Type() AutomationType
	metadata() persist.Properties
}

// Automation is a schema leaf that does something with the configuration of a draft item
type Automation struct {
	ID   string
	Name string
	Spec AutomationSpec

	parent *Element
}

// Type returns the variant of the automation
func (a *Automation) Type() AutomationType {
	if a.Spec == nil {
		return ""
	}
	return a.Spec.Type()
}

// Parent returns the element that owns the automation
func (a *Automation) Parent() *Element {
	return a.parent
}

// CodeTemplateCommand returns the spec when the automation renders a code template
func (a *Automation) CodeTemplateCommand() (*CodeTemplateCommand, bool) {
	spec, ok := a.Spec.(*CodeTemplateCommand)
	return spec, ok
}

// CliCommand returns the spec when the automation runs a program
func (a *Automation) CliCommand() (*CliCommand, bool) {
	spec, ok := a.Spec.(*CliCommand)
	return spec, ok
}

// LaunchPoint returns the spec when the automation is a launch point
func (a *Automation) LaunchPoint() (*CommandLaunchPoint, bool) {
	spec, ok := a.Spec.(*CommandLaunchPoint)
	return spec, ok
}

// CodeTemplateCommand renders a code template of the same element into a file
type CodeTemplateCommand struct {
	CodeTemplateID string
	IsOneOff       bool
	// FilePath is itself a template, rendered against the draft item
	FilePath string
}

func (c *CodeTemplateCommand) Type() AutomationType { return AutomationTypeCodeTemplateCommand }

func (c *CodeTemplateCommand) metadata() persist.Properties {
	props := persist.NewProperties()
	props.Add("CodeTemplateId", c.CodeTemplateID)
	props.Add("IsOneOff", c.IsOneOff)
	props.Add("FilePath", c.FilePath)
	return props
}

// CliCommand runs a program with templated arguments
type CliCommand struct {
	ApplicationName string
	Arguments       string
}

func (c *CliCommand) Type() AutomationType { return AutomationTypeCliCommand }

func (c *CliCommand) metadata() persist.Properties {
	props := persist.NewProperties()
	props.Add("ApplicationName", c.ApplicationName)
	props.Add("Arguments", c.Arguments)
	return props
}

// CommandLaunchPoint triggers an ordered set of commands as one action
type CommandLaunchPoint struct {
	CommandIDs []string
}

func (c *CommandLaunchPoint) Type() AutomationType { return AutomationTypeCommandLaunchPoint }

func (c *CommandLaunchPoint) metadata() persist.Properties {
	props := persist.NewProperties()
	props.Add("CommandIds", append([]string{}, c.CommandIDs...))
	return props
}

// HasCommand reports whether the launch point triggers the command
func (c *CommandLaunchPoint) HasCommand(id string) bool {
	for _, existing := range c.CommandIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// appendCommands adds ids not yet present, keeping order; returns how many were added
func (c *CommandLaunchPoint) appendCommands(ids []string) int {
	added := 0
	for _, id := range ids {
		if id == "" || c.HasCommand(id) {
			continue
		}
		c.CommandIDs = append(c.CommandIDs, id)
		added++
	}
	return added
}

// removeCommands removes ids; returns how many were removed
func (c *CommandLaunchPoint) removeCommands(ids []string) int {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := c.CommandIDs[:0]
	removed := 0
	for _, id := range c.CommandIDs {
		if remove[id] {
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.CommandIDs = kept
	return removed
}

func specFromMetadata(automationType AutomationType, meta persist.Properties) AutomationSpec {
	switch AutomationType(strings.TrimSpace(string(automationType))) {
	case AutomationTypeCodeTemplateCommand:
		return &CodeTemplateCommand{
			CodeTemplateID: meta.String("CodeTemplateId"),
			IsOneOff:       meta.Bool("IsOneOff"),
			FilePath:       meta.String("FilePath"),
		}
	case AutomationTypeCliCommand:
		return &CliCommand{
			ApplicationName: meta.String("ApplicationName"),
			Arguments:       meta.String("Arguments"),
		}
	case AutomationTypeCommandLaunchPoint:
		lp := &CommandLaunchPoint{}
		lp.appendCommands(meta.Strings("CommandIds"))
		return lp
	default:
		return nil
	}
}
