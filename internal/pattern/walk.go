package pattern

import "errors"

// NodeKind identifies what a walked node holds
type NodeKind int

const (
	NodeElement NodeKind = iota
	NodeAttribute
	NodeCodeTemplate
	NodeAutomation
)

// Node is one stop of a schema walk. Exactly one of the pointers matching Kind is set.
type Node struct {
	Kind         NodeKind
	Depth        int
	Element      *Element
	Attribute    *Attribute
	CodeTemplate *CodeTemplate
	Automation   *Automation
}

var errStopWalk = errors.New("stop walk")

// Walk visits the tree depth-first: each element, then its attributes, code templates and
// automation, then its child elements. Returning an error from fn stops the walk and returns it.
func Walk(root *Element, fn func(Node) error) error {
	err := walk(root, 0, fn)
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

func walk(e *Element, depth int, fn func(Node) error) error {
	if err := fn(Node{Kind: NodeElement, Depth: depth, Element: e}); err != nil {
		return err
	}
	for _, attr := range e.Attributes {
		if err := fn(Node{Kind: NodeAttribute, Depth: depth + 1, Attribute: attr}); err != nil {
			return err
		}
	}
	for _, tmpl := range e.CodeTemplates {
		if err := fn(Node{Kind: NodeCodeTemplate, Depth: depth + 1, CodeTemplate: tmpl}); err != nil {
			return err
		}
	}
	for _, auto := range e.Automations {
		if err := fn(Node{Kind: NodeAutomation, Depth: depth + 1, Automation: auto}); err != nil {
			return err
		}
	}
	for _, child := range e.Elements {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Fold reduces the element tree bottom-up: fn receives an element and the folded results of
// its child elements.
func Fold[T any](root *Element, fn func(e *Element, children []T) T) T {
	children := make([]T, 0, len(root.Elements))
	for _, child := range root.Elements {
		children = append(children, Fold(child, fn))
	}
	return fn(root, children)
}
