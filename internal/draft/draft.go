// Package draft implements the instance tree of a toolkit: named drafts whose items are
// materialised against the schema, configured, validated, addressed by path and upgraded
// when a newer toolkit is installed.
package draft

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/toolkit"
	"github.com/n1rna/automate/internal/version"
)

// DraftDefinition is a named instance of a toolkit
type DraftDefinition struct {
	ID   string
	Name string
	// Toolkit is the draft's own copy of the toolkit it was created from
	Toolkit *toolkit.ToolkitDefinition
	Model   *DraftItem
}

// NewDraft creates a draft of the toolkit with a materialised root
func NewDraft(name string, tk *toolkit.ToolkitDefinition) (*DraftDefinition, error) {
	if err := pattern.ValidateName(name, "draft"); err != nil {
		return nil, err
	}
	if tk == nil || tk.Pattern == nil {
		return nil, errs.Validation("the draft '%s' needs an installed toolkit", name)
	}
	bound, err := tk.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to copy toolkit %s: %w", tk.Name(), err)
	}

	d := &DraftDefinition{
		ID:      uuid.New().String(),
		Name:    name,
		Toolkit: bound,
		Model:   newDraftItem(bound.Pattern.Root(), nil, false),
	}
	d.Model.materialise()
	return d, nil
}

// Pattern returns the schema the draft is bound to
func (d *DraftDefinition) Pattern() *pattern.PatternDefinition {
	return d.Toolkit.Pattern
}

// ToolkitVersion returns the version of the toolkit the draft is bound to
func (d *DraftDefinition) ToolkitVersion() string {
	return d.Toolkit.Version
}

// Validate validates the whole draft
func (d *DraftDefinition) Validate() []ValidationResult {
	return d.Model.Validate()
}

// FindItemByID returns the materialised item with the given id
func (d *DraftDefinition) FindItemByID(id string) *DraftItem {
	var found *DraftItem
	_ = d.Model.Walk(func(item *DraftItem) error {
		if item.ID == id {
			found = item
			return errStopWalk
		}
		return nil
	})
	return found
}

var errStopWalk = errors.New("stop walk")

// VerifyDraftCompatibility fails when a draft cannot be used with the installed toolkit,
// telling the user whether to install a newer toolkit or to upgrade the draft
func VerifyDraftCompatibility(draftVersion, toolkitVersion string) error {
	draftV, err := version.Parse(draftVersion)
	if err != nil {
		return errs.Compatibility("the draft toolkit version '%s' is not a valid semantic version", draftVersion)
	}
	installedV, err := version.Parse(toolkitVersion)
	if err != nil {
		return errs.Compatibility("the installed toolkit version '%s' is not a valid semantic version", toolkitVersion)
	}
	switch c := draftV.Compare(installedV); {
	case c > 0:
		return errs.Compatibility("the draft was created with a newer version (%s) of the toolkit than the one installed (%s), install the newer toolkit", draftVersion, toolkitVersion)
	case c < 0:
		return errs.Compatibility("the draft was created with an older version (%s) of the toolkit than the one installed (%s), upgrade the draft", draftVersion, toolkitVersion)
	}
	return nil
}
