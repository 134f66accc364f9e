package toolkit

import (
	"bytes"
	"fmt"
	"time"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
)

// Store persists patterns and toolkits for the packager
type Store interface {
	UpsertPattern(p *pattern.PatternDefinition) error
	// ExportToolkit writes an installable toolkit and returns its location
	ExportToolkit(t *ToolkitDefinition) (string, error)
	ImportToolkit(t *ToolkitDefinition) error
}

// CodeTemplateContent is the downloaded content of a code template
type CodeTemplateContent struct {
	Content         []byte
	LastModifiedUtc time.Time
}

// ContentProvider gives access to the authored content of code templates
type ContentProvider interface {
	DownloadCodeTemplate(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate) (CodeTemplateContent, error)
}

// Packager builds toolkits from patterns and installs them
type Packager struct {
	Store          Store
	Content        ContentProvider
	RuntimeVersion string
}

// PackResult describes a built toolkit
type PackResult struct {
	Toolkit  *ToolkitDefinition
	Version  pattern.VersionUpdateResult
	Location string
}

// NewPackager creates a packager for the given runtime version
func NewPackager(store Store, content ContentProvider, runtimeVersion string) *Packager {
	return &Packager{
		Store:          store,
		Content:        content,
		RuntimeVersion: runtimeVersion,
	}
}

// Pack builds the next version of a toolkit from the pattern, persists the pattern with its
// new version and exports the toolkit. The instruction is "", "auto" or an explicit version.
func (pk *Packager) Pack(p *pattern.PatternDefinition, instruction string) (*PackResult, error) {
	contents := make(map[string][]byte)
	for _, tmpl := range p.AllCodeTemplates() {
		content, err := pk.Content.DownloadCodeTemplate(p, tmpl)
		if err != nil {
			return nil, fmt.Errorf("failed to download code template %s: %w", tmpl.Name, err)
		}
		if content.LastModifiedUtc.After(tmpl.LastModifiedUtc) {
			p.ToolkitVersion.RegisterChange(pattern.NonBreaking, "changed content of code template '%s'", tmpl.Name)
			tmpl.LastModifiedUtc = content.LastModifiedUtc.UTC()
		}
		contents[tmpl.ID] = content.Content
	}

	update, err := p.ToolkitVersion.UpdateVersion(instruction)
	if err != nil {
		return nil, err
	}

	frozen, err := p.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to copy pattern %s: %w", p.Name, err)
	}
	t := &ToolkitDefinition{
		ID:             p.ID,
		Version:        update.Version,
		RuntimeVersion: pk.RuntimeVersion,
		Pattern:        frozen,
	}
	for _, tmpl := range frozen.AllCodeTemplates() {
		t.CodeTemplateFiles = append(t.CodeTemplateFiles, &CodeTemplateFile{
			ID:       tmpl.ID,
			Contents: contents[tmpl.ID],
		})
	}

	if err := pk.Store.UpsertPattern(p); err != nil {
		return nil, fmt.Errorf("failed to save pattern %s: %w", p.Name, err)
	}
	location, err := pk.Store.ExportToolkit(t)
	if err != nil {
		return nil, fmt.Errorf("failed to export toolkit %s: %w", t.Name(), err)
	}

	return &PackResult{
		Toolkit:  t,
		Version:  update,
		Location: location,
	}, nil
}

// Decode reads an installer payload into a toolkit, rejecting empty and invalid payloads
func Decode(installer []byte) (*ToolkitDefinition, error) {
	if len(bytes.TrimSpace(installer)) == 0 {
		return nil, errs.Validation("the toolkit installer is empty")
	}
	t, err := persist.Unmarshal[*ToolkitDefinition](NewFactory(), TypeToolkitDefinition, installer)
	if err != nil {
		return nil, errs.Validation("the toolkit installer is not a valid toolkit: %s", err)
	}
	if t.ID == "" {
		return nil, errs.Validation("the toolkit installer is not a valid toolkit: it has no id")
	}
	if t.Pattern == nil {
		return nil, errs.Validation("the toolkit installer is not a valid toolkit: it has no pattern")
	}
	return t, nil
}

// UnPack decodes an installer, verifies that this runtime can use it and imports it
func (pk *Packager) UnPack(installer []byte) (*ToolkitDefinition, error) {
	t, err := Decode(installer)
	if err != nil {
		return nil, err
	}
	if err := VerifyRuntimeCompatibility(pk.RuntimeVersion, t.RuntimeVersion); err != nil {
		return nil, err
	}
	if err := pk.Store.ImportToolkit(t); err != nil {
		return nil, fmt.Errorf("failed to import toolkit %s: %w", t.Name(), err)
	}
	return t, nil
}
