// Package toolkit freezes patterns into versioned, installable toolkits and keeps drafts
// bound to them up to date.
package toolkit

import (
	"fmt"

	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
)

const (
	TypeToolkitDefinition = "ToolkitDefinition"
	TypeCodeTemplateFile  = "CodeTemplateFile"
)

// CodeTemplateFile is the packaged content of a code template, keyed by the code template id
type CodeTemplateFile struct {
	ID       string
	Contents []byte
}

// ToolkitDefinition is an immutable snapshot of a pattern and its code template contents
type ToolkitDefinition struct {
	ID                string
	Version           string
	RuntimeVersion    string
	Pattern           *pattern.PatternDefinition
	CodeTemplateFiles []*CodeTemplateFile
}

// Name returns the name of the packaged pattern
func (t *ToolkitDefinition) Name() string {
	if t.Pattern == nil {
		return ""
	}
	return t.Pattern.Name
}

// FindCodeTemplateFile returns the packaged content of a code template
func (t *ToolkitDefinition) FindCodeTemplateFile(codeTemplateID string) *CodeTemplateFile {
	for _, file := range t.CodeTemplateFiles {
		if file.ID == codeTemplateID {
			return file
		}
	}
	return nil
}

// Clone deep-copies the toolkit
func (t *ToolkitDefinition) Clone() (*ToolkitDefinition, error) {
	return persist.Clone[*ToolkitDefinition](NewFactory(), TypeToolkitDefinition, t)
}

// Register adds the toolkit rehydrators, and those of the schema tree, to a factory
func Register(f *persist.Factory) {
	pattern.Register(f)
	f.Register(TypeToolkitDefinition, rehydrateToolkit)
	f.Register(TypeCodeTemplateFile, rehydrateCodeTemplateFile)
}

// NewFactory returns a factory able to rehydrate toolkits
func NewFactory() *persist.Factory {
	f := persist.NewFactory()
	Register(f)
	return f
}

// Dehydrate implements persist.Persistable
func (t *ToolkitDefinition) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", t.ID)
	props.Add("Version", t.Version)
	props.Add("RuntimeVersion", t.RuntimeVersion)
	if t.Pattern != nil {
		props.Add("Pattern", t.Pattern.Dehydrate())
	}
	files := make([]persist.Properties, 0, len(t.CodeTemplateFiles))
	for _, file := range t.CodeTemplateFiles {
		files = append(files, file.Dehydrate())
	}
	props.Add("CodeTemplateFiles", files)
	return props
}

// Dehydrate implements persist.Persistable
func (c *CodeTemplateFile) Dehydrate() persist.Properties {
	props := persist.NewProperties()
	props.Add("Id", c.ID)
	props.Add("Contents", append([]byte{}, c.Contents...))
	return props
}

func rehydrateToolkit(props persist.Properties, f *persist.Factory) (interface{}, error) {
	t := &ToolkitDefinition{
		ID:             props.String("Id"),
		Version:        props.String("Version"),
		RuntimeVersion: props.String("RuntimeVersion"),
	}
	if patternProps, ok := props.Object("Pattern"); ok {
		p, err := persist.Rehydrate[*pattern.PatternDefinition](f, pattern.TypePatternDefinition, patternProps)
		if err != nil {
			return nil, fmt.Errorf("failed to rehydrate toolkit pattern: %w", err)
		}
		t.Pattern = p
	}
	for _, item := range props.Objects("CodeTemplateFiles") {
		file, err := persist.Rehydrate[*CodeTemplateFile](f, TypeCodeTemplateFile, item)
		if err != nil {
			return nil, err
		}
		t.CodeTemplateFiles = append(t.CodeTemplateFiles, file)
	}
	return t, nil
}

func rehydrateCodeTemplateFile(props persist.Properties, _ *persist.Factory) (interface{}, error) {
	return &CodeTemplateFile{
		ID:       props.String("Id"),
		Contents: props.Bytes("Contents"),
	}, nil
}
