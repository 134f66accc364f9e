package pattern

import "time"

// CodeTemplate is the schema metadata of a code template. Its content lives with the
// content provider while authoring and inside the toolkit once packaged.
type CodeTemplate struct {
	ID                    string
	Name                  string
	OriginalFilePath      string
	OriginalFileExtension string
	LastModifiedUtc       time.Time

	parent *Element
}

// Parent returns the element that owns the code template
func (c *CodeTemplate) Parent() *Element {
	return c.parent
}
