// Package storage keeps patterns, installed toolkits and drafts on the file system as one
// JSON file per entity, indexed by name, together with the authored content of code templates
// and the local state of the user.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/n1rna/automate/internal/config"
	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
	"github.com/n1rna/automate/internal/toolkit"
)

const toolkitExtension = ".toolkit"

// Storage handles all file system operations for automate
type Storage struct {
	config   *config.Config
	patterns *repository[*pattern.PatternDefinition]
	toolkits *repository[*toolkit.ToolkitDefinition]
	drafts   *repository[*draft.DraftDefinition]
	now      func() time.Time
}

// NewStorage creates a new storage instance with the given configuration
func NewStorage(cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		var err error
		cfg, err = config.LoadConfig("")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to initialize directories: %w", err)
	}

	factory := draft.NewFactory()

	patterns, err := newRepository(cfg.PatternsDir(), "pattern", pattern.TypePatternDefinition, factory,
		func(p *pattern.PatternDefinition) EntitySummary {
			return EntitySummary{ID: p.ID, Name: p.Name, Version: p.ToolkitVersion.Current}
		})
	if err != nil {
		return nil, err
	}
	toolkits, err := newRepository(cfg.ToolkitsDir(), "toolkit", toolkit.TypeToolkitDefinition, factory,
		func(t *toolkit.ToolkitDefinition) EntitySummary {
			return EntitySummary{ID: t.ID, Name: t.Name(), Version: t.Version}
		})
	if err != nil {
		return nil, err
	}
	drafts, err := newRepository(cfg.DraftsDir(), "draft", draft.TypeDraftDefinition, factory,
		func(d *draft.DraftDefinition) EntitySummary {
			return EntitySummary{ID: d.ID, Name: d.Name, Version: d.ToolkitVersion()}
		})
	if err != nil {
		return nil, err
	}

	return &Storage{
		config:   cfg,
		patterns: patterns,
		toolkits: toolkits,
		drafts:   drafts,
		now:      time.Now,
	}, nil
}

// GetBaseDir returns the current base directory
func (s *Storage) GetBaseDir() string {
	return s.config.BaseDir
}

// Patterns

// UpsertPattern implements toolkit.Store
func (s *Storage) UpsertPattern(p *pattern.PatternDefinition) error {
	return s.patterns.save(p)
}

// LoadPattern loads a pattern by name or id
func (s *Storage) LoadPattern(nameOrID string) (*pattern.PatternDefinition, error) {
	return s.patterns.load(nameOrID)
}

// PatternExists reports whether a pattern is stored under the name or id
func (s *Storage) PatternExists(nameOrID string) bool {
	return s.patterns.exists(nameOrID)
}

// DeletePattern removes a pattern and the content of its code templates
func (s *Storage) DeletePattern(nameOrID string) error {
	id, err := s.patterns.resolveID(nameOrID)
	if err != nil {
		return err
	}
	if err := s.patterns.delete(id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.config.CodeTemplatesDir(), id)); err != nil {
		return fmt.Errorf("failed to remove code templates of pattern %s: %w", nameOrID, err)
	}
	return nil
}

// ListPatterns returns summaries of all patterns
func (s *Storage) ListPatterns() ([]EntitySummary, error) {
	return s.patterns.list()
}

// Toolkits

// ExportToolkit implements toolkit.Store. The installer is written to the export
// directory as <name>_<version>.toolkit.
func (s *Storage) ExportToolkit(t *toolkit.ToolkitDefinition) (string, error) {
	data, err := persist.Marshal(t)
	if err != nil {
		return "", err
	}
	location := filepath.Join(s.config.ExportDir, fmt.Sprintf("%s_%s%s", t.Name(), t.Version, toolkitExtension))
	if err := writeFileAtomic(location, data); err != nil {
		return "", fmt.Errorf("failed to write toolkit installer: %w", err)
	}
	return location, nil
}

// ImportToolkit implements toolkit.Store. Installing replaces any installed version.
func (s *Storage) ImportToolkit(t *toolkit.ToolkitDefinition) error {
	return s.toolkits.save(t)
}

// ReadInstaller reads an installer file
func (s *Storage) ReadInstaller(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("the toolkit installer '%s' does not exist", path)
		}
		return nil, fmt.Errorf("failed to read toolkit installer: %w", err)
	}
	return data, nil
}

// LoadToolkit loads an installed toolkit by name or id
func (s *Storage) LoadToolkit(nameOrID string) (*toolkit.ToolkitDefinition, error) {
	return s.toolkits.load(nameOrID)
}

// ListToolkits returns summaries of all installed toolkits
func (s *Storage) ListToolkits() ([]EntitySummary, error) {
	return s.toolkits.list()
}

// DeleteToolkit uninstalls a toolkit
func (s *Storage) DeleteToolkit(nameOrID string) error {
	return s.toolkits.delete(nameOrID)
}

// Drafts

// SaveDraft saves a draft and updates the index
func (s *Storage) SaveDraft(d *draft.DraftDefinition) error {
	return s.drafts.save(d)
}

// LoadDraft loads a draft by name or id
func (s *Storage) LoadDraft(nameOrID string) (*draft.DraftDefinition, error) {
	return s.drafts.load(nameOrID)
}

// DraftExists reports whether a draft is stored under the name or id
func (s *Storage) DraftExists(nameOrID string) bool {
	return s.drafts.exists(nameOrID)
}

// DeleteDraft removes a draft
func (s *Storage) DeleteDraft(nameOrID string) error {
	return s.drafts.delete(nameOrID)
}

// ListDrafts returns summaries of all drafts
func (s *Storage) ListDrafts() ([]EntitySummary, error) {
	return s.drafts.list()
}

// Validate checks the integrity of the storage
func (s *Storage) Validate() error {
	if err := s.patterns.verify(); err != nil {
		return err
	}
	if err := s.toolkits.verify(); err != nil {
		return err
	}
	return s.drafts.verify()
}
