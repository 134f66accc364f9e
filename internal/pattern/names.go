package pattern

import (
	"regexp"
	"strings"

	"github.com/n1rna/automate/internal/errs"
)

const maxNameLength = 100

var namePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ReservedNames cannot be used for elements, attributes or automation, since they collide with
// the properties every draft item exposes to path expressions and templates.
var ReservedNames = []string{
	"Id",
	"Parent",
	"Items",
	"Properties",
	"Schema",
	"IsMaterialised",
	"DisplayName",
	"Description",
	"ConfigurePath",
	"Values",
}

// IsReservedName reports whether name collides (case-insensitively) with a reserved name
func IsReservedName(name string) bool {
	for _, reserved := range ReservedNames {
		if strings.EqualFold(reserved, name) {
			return true
		}
	}
	return false
}

// TemplateWords are the helper functions and action keywords of code templates. A member named
// after one could not be referenced bare inside a template, so element and attribute names may
// not match one exactly.
var TemplateWords = []string{
	"upper", "lower", "title", "camel", "pascal", "snake", "kebab", "default",
	"if", "else", "end", "range", "with", "define", "template", "block", "break", "continue",
	"and", "or", "not", "eq", "ne", "lt", "le", "gt", "ge", "len", "index", "slice", "call",
	"print", "printf", "println", "html", "js", "urlquery", "true", "false", "nil",
}

// IsTemplateWord reports whether name is exactly one of the TemplateWords
func IsTemplateWord(name string) bool {
	for _, word := range TemplateWords {
		if word == name {
			return true
		}
	}
	return false
}

// ValidateName checks the name format. kind is used in the message ("element", "attribute"...).
func ValidateName(name, kind string) error {
	if name == "" {
		return errs.Validation("the %s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return errs.Validation("the %s name '%s' is longer than %d characters", kind, name, maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return errs.Validation("the %s name '%s' must start with a letter or underscore and contain only letters, digits and underscores", kind, name)
	}
	return nil
}

func validateNewName(name, kind string) error {
	if err := ValidateName(name, kind); err != nil {
		return err
	}
	if IsReservedName(name) {
		return errs.Validation("the %s name '%s' is reserved", kind, name)
	}
	return nil
}

// validateMemberName checks name against the sibling elements and attributes of e,
// ignoring the node with id except (used for renames).
func (e *Element) validateMemberName(name, kind, except string) error {
	if err := validateNewName(name, kind); err != nil {
		return err
	}
	if IsTemplateWord(name) {
		return errs.Validation("the %s name '%s' is reserved by templates", kind, name)
	}
	for _, attr := range e.Attributes {
		if attr.ID != except && strings.EqualFold(attr.Name, name) {
			return errs.Validation("an attribute named '%s' already exists on '%s'", attr.Name, e.Name)
		}
	}
	for _, child := range e.Elements {
		if child.ID != except && strings.EqualFold(child.Name, name) {
			return errs.Validation("an element named '%s' already exists on '%s'", child.Name, e.Name)
		}
	}
	return nil
}

func (e *Element) validateAutomationName(name, except string) error {
	if err := validateNewName(name, "automation"); err != nil {
		return err
	}
	for _, auto := range e.Automations {
		if auto.ID != except && strings.EqualFold(auto.Name, name) {
			return errs.Validation("an automation named '%s' already exists on '%s'", auto.Name, e.Name)
		}
	}
	return nil
}

func (e *Element) validateCodeTemplateName(name string) error {
	if err := validateNewName(name, "code template"); err != nil {
		return err
	}
	for _, tmpl := range e.CodeTemplates {
		if strings.EqualFold(tmpl.Name, name) {
			return errs.Validation("a code template named '%s' already exists on '%s'", tmpl.Name, e.Name)
		}
	}
	return nil
}
