package draft

import (
	"strings"

	"github.com/n1rna/automate/internal/pattern"
)

const parentSegment = "Parent"

// Resolve resolves an instance path expression from the root of the draft
func Resolve(d *DraftDefinition, expression string) (*DraftItem, error) {
	return d.Model.Resolve(expression)
}

// Resolve resolves an instance path expression relative to this item.
//
// The expression may be fully qualified, starting with the pattern name, or relative to the
// item. Each segment names a child element, the id of a collection instance, or Parent.
// Unmaterialised items are never created by resolving: a path through one yields nil.
func (d *DraftItem) Resolve(expression string) (*DraftItem, error) {
	segments, err := pattern.ParseExpression(expression)
	if err != nil {
		return nil, err
	}

	current := d
	root := d.root()
	if strings.EqualFold(segments[0], root.schema.Name) && d.Property(segments[0]) == nil {
		current = root
		segments = segments[1:]
	}

	for _, segment := range segments {
		if strings.EqualFold(segment, parentSegment) {
			current = current.Parent()
			if current == nil {
				return nil, nil
			}
			continue
		}
		next := current.Property(segment)
		if next == nil {
			next = current.Item(segment)
		}
		if next == nil || !next.IsMaterialised {
			return nil, nil
		}
		current = next
	}
	return current, nil
}

func (d *DraftItem) root() *DraftItem {
	node := d
	for node.parent != nil {
		node = node.parent
	}
	return node
}
