// Package application orchestrates the pattern, toolkit and draft core over the repository:
// authoring patterns and building toolkits, installing toolkits and working with drafts.
package application

import (
	"time"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/toolkit"
)

// Repository is everything the services persist through
type Repository interface {
	toolkit.Store
	toolkit.ContentProvider

	UploadCodeTemplate(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate, sourcePath string) (time.Time, error)
	DeleteCodeTemplateContent(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate) error

	LoadPattern(nameOrID string) (*pattern.PatternDefinition, error)
	PatternExists(nameOrID string) bool
	DeletePattern(nameOrID string) error
	ListPatterns() ([]storage.EntitySummary, error)

	ReadInstaller(path string) ([]byte, error)
	LoadToolkit(nameOrID string) (*toolkit.ToolkitDefinition, error)
	ListToolkits() ([]storage.EntitySummary, error)

	SaveDraft(d *draft.DraftDefinition) error
	LoadDraft(nameOrID string) (*draft.DraftDefinition, error)
	DraftExists(nameOrID string) bool
	DeleteDraft(nameOrID string) error
	ListDrafts() ([]storage.EntitySummary, error)

	LoadState() (*storage.LocalState, error)
	UpdateState(fn func(*storage.LocalState)) error
}

var _ Repository = (*storage.Storage)(nil)
