package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/pattern"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	elementStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
)

// patternTree renders the schema tree of a pattern
func patternTree(def *pattern.PatternDefinition) string {
	root := pattern.Fold(def.Root(), func(e *pattern.Element, children []*tree.Tree) *tree.Tree {
		label := elementStyle.Render(e.Name) + " " + hintStyle.Render(describeElement(e))
		if e.IsRoot() {
			label = titleStyle.Render(def.Name) + " " + hintStyle.Render("v"+def.ToolkitVersion.Current)
		}
		t := tree.Root(label).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(enumeratorStyle)
		for _, attr := range e.Attributes {
			t.Child(describeAttribute(attr))
		}
		for _, tmpl := range e.CodeTemplates {
			t.Child(fmt.Sprintf("%s %s", tmpl.Name, hintStyle.Render("(code template, "+tmpl.OriginalFilePath+")")))
		}
		for _, auto := range e.Automations {
			t.Child(fmt.Sprintf("%s %s", auto.Name, hintStyle.Render("("+describeAutomation(def, auto)+")")))
		}
		for _, child := range children {
			t.Child(child)
		}
		return t
	})
	return root.String()
}

func describeElement(e *pattern.Element) string {
	parts := []string{string(e.Cardinality)}
	if e.IsCollection() {
		parts = append(parts, "collection")
	}
	if e.AutoCreate {
		parts = append(parts, "auto-create")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func describeAttribute(attr *pattern.Attribute) string {
	parts := []string{string(attr.DataType)}
	if attr.IsRequired {
		parts = append(parts, "required")
	}
	if attr.DefaultValue != "" {
		parts = append(parts, "default: "+attr.DefaultValue)
	}
	if attr.HasChoices() {
		parts = append(parts, "choices: "+strings.Join(attr.Choices, "|"))
	}
	return fmt.Sprintf("%s %s", attr.Name, hintStyle.Render("("+strings.Join(parts, ", ")+")"))
}

func describeAutomation(def *pattern.PatternDefinition, auto *pattern.Automation) string {
	switch spec := auto.Spec.(type) {
	case *pattern.CodeTemplateCommand:
		desc := "code template command -> " + spec.FilePath
		if spec.IsOneOff {
			desc += ", one-off"
		}
		return desc
	case *pattern.CliCommand:
		return strings.TrimSpace("cli command: " + spec.ApplicationName + " " + spec.Arguments)
	case *pattern.CommandLaunchPoint:
		names := make([]string, 0, len(spec.CommandIDs))
		for _, id := range spec.CommandIDs {
			if cmd, err := def.FindAutomation(id); err == nil {
				names = append(names, cmd.Name)
			}
		}
		return "launch point: " + strings.Join(names, ", ")
	default:
		return string(auto.Type())
	}
}

// draftTree renders the materialised items of a draft
func draftTree(item *draft.DraftItem) string {
	return draftNode(item).String()
}

func draftNode(item *draft.DraftItem) *tree.Tree {
	label := elementStyle.Render(item.Name())
	switch {
	case item.IsContainer():
		label += " " + hintStyle.Render(fmt.Sprintf("(%d items)", len(item.Items())))
	case item.ID != "":
		label += " " + hintStyle.Render(item.ConfigurePath())
	}
	t := tree.Root(label).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(enumeratorStyle)

	values := item.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.Child(fmt.Sprintf("%s = %s", name, pattern.FormatValue(values[name])))
	}

	for _, child := range item.Properties() {
		if child.IsMaterialised {
			t.Child(draftNode(child))
		}
	}
	for _, child := range item.Items() {
		t.Child(draftNode(child))
	}
	return t
}
