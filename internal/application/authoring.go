package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/logger"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/toolkit"
)

// AuthoringService creates and edits patterns and builds toolkits from them
type AuthoringService struct {
	repo     Repository
	packager *toolkit.Packager
	now      func() time.Time
}

// NewAuthoringService creates an authoring service for the given runtime version
func NewAuthoringService(repo Repository, runtimeVersion string) *AuthoringService {
	return &AuthoringService{
		repo:     repo,
		packager: toolkit.NewPackager(repo, repo, runtimeVersion),
		now:      time.Now,
	}
}

// CreatePattern creates a new pattern and makes it the current one
func (s *AuthoringService) CreatePattern(name string) (*pattern.PatternDefinition, error) {
	p, err := pattern.NewPattern(name)
	if err != nil {
		return nil, err
	}
	if s.repo.PatternExists(name) {
		return nil, errs.Validation("a pattern named '%s' already exists", name)
	}
	if err := s.repo.UpsertPattern(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(func(state *storage.LocalState) {
		state.CurrentPatternID = p.ID
	}); err != nil {
		return nil, err
	}
	logger.Debug("created pattern %s (%s)", p.Name, p.ID)
	return p, nil
}

// SwitchPattern makes another pattern the current one
func (s *AuthoringService) SwitchPattern(nameOrID string) (*pattern.PatternDefinition, error) {
	p, err := s.repo.LoadPattern(nameOrID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(func(state *storage.LocalState) {
		state.CurrentPatternID = p.ID
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// CurrentPattern loads the pattern being authored
func (s *AuthoringService) CurrentPattern() (*pattern.PatternDefinition, error) {
	state, err := s.repo.LoadState()
	if err != nil {
		return nil, err
	}
	if state.CurrentPatternID == "" || !s.repo.PatternExists(state.CurrentPatternID) {
		return nil, errs.NotFound("there is no current pattern, create one or switch to an existing one")
	}
	return s.repo.LoadPattern(state.CurrentPatternID)
}

// ListPatterns returns all patterns and the id of the current one
func (s *AuthoringService) ListPatterns() ([]storage.EntitySummary, string, error) {
	summaries, err := s.repo.ListPatterns()
	if err != nil {
		return nil, "", err
	}
	state, err := s.repo.LoadState()
	if err != nil {
		return nil, "", err
	}
	return summaries, state.CurrentPatternID, nil
}

// DeletePattern removes a pattern and its code template content
func (s *AuthoringService) DeletePattern(nameOrID string) error {
	p, err := s.repo.LoadPattern(nameOrID)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePattern(p.ID); err != nil {
		return err
	}
	logger.Debug("deleted pattern %s", p.Name)
	return s.repo.UpdateState(func(state *storage.LocalState) {
		if state.CurrentPatternID == p.ID {
			state.CurrentPatternID = ""
		}
	})
}

// Update applies a change to the current pattern and saves it. Nothing is saved when fn fails.
func (s *AuthoringService) Update(fn func(p *pattern.PatternDefinition) error) (*pattern.PatternDefinition, error) {
	p, err := s.CurrentPattern()
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertPattern(p); err != nil {
		return nil, err
	}
	logger.Debug("saved pattern %s with pending changes %s", p.Name, p.ToolkitVersion.LastChanges)
	return p, nil
}

// UpdateElement resolves the element addressed by expression in the current pattern, applies
// fn to it and saves the pattern. An empty expression addresses the root.
func (s *AuthoringService) UpdateElement(expression string, fn func(p *pattern.PatternDefinition, e *pattern.Element) error) (*pattern.PatternDefinition, error) {
	return s.Update(func(p *pattern.PatternDefinition) error {
		e, err := FindElement(p, expression)
		if err != nil {
			return err
		}
		return fn(p, e)
	})
}

// FindElement resolves a schema path expression, which must exist. An empty expression is the
// root. Expressions not starting with the pattern name are relative to the root.
func FindElement(p *pattern.PatternDefinition, expression string) (*pattern.Element, error) {
	if strings.TrimSpace(expression) == "" {
		return p.Root(), nil
	}
	segments, err := pattern.ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	qualified := expression
	if !strings.EqualFold(segments[0], p.Name) || p.FindElement(segments[0]) != nil {
		qualified = "{" + strings.Join(append([]string{p.Name}, segments...), ".") + "}"
	}
	e, err := pattern.ResolveElement(p, qualified)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errs.NotFound("the element '%s' does not exist in pattern '%s'", expression, p.Name)
	}
	return e, nil
}

// AddCodeTemplate uploads the content of a file as a new code template of an element
func (s *AuthoringService) AddCodeTemplate(expression, name, sourcePath string) (*pattern.CodeTemplate, error) {
	var added *pattern.CodeTemplate
	_, err := s.UpdateElement(expression, func(p *pattern.PatternDefinition, e *pattern.Element) error {
		tmpl, err := e.AddCodeTemplate(name, sourcePath, s.now())
		if err != nil {
			return err
		}
		modified, err := s.repo.UploadCodeTemplate(p, tmpl, sourcePath)
		if err != nil {
			return err
		}
		tmpl.LastModifiedUtc = modified
		added = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UploadCodeTemplate replaces the content of an existing code template. The change is
// registered when the next toolkit is built.
func (s *AuthoringService) UploadCodeTemplate(expression, name, sourcePath string) (*pattern.CodeTemplate, error) {
	p, err := s.CurrentPattern()
	if err != nil {
		return nil, err
	}
	e, err := FindElement(p, expression)
	if err != nil {
		return nil, err
	}
	tmpl := e.FindCodeTemplate(name)
	if tmpl == nil {
		return nil, errs.NotFound("the code template '%s' does not exist on '%s'", name, e.Name)
	}
	if _, err := s.repo.UploadCodeTemplate(p, tmpl, sourcePath); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// DeleteCodeTemplate removes a code template and its content
func (s *AuthoringService) DeleteCodeTemplate(expression, name string) error {
	var removed *pattern.CodeTemplate
	p, err := s.UpdateElement(expression, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
		removed = e.FindCodeTemplate(name)
		return e.DeleteCodeTemplate(name)
	})
	if err != nil {
		return err
	}
	return s.repo.DeleteCodeTemplateContent(p, removed)
}

// Build packages the current pattern into the next version of its toolkit
func (s *AuthoringService) Build(instruction string) (*toolkit.PackResult, error) {
	p, err := s.CurrentPattern()
	if err != nil {
		return nil, err
	}
	result, err := s.packager.Pack(p, instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to build toolkit for pattern %s: %w", p.Name, err)
	}
	logger.With("pattern", p.Name).Infow("built toolkit",
		"previous", result.Version.Previous,
		"version", result.Version.Version,
		"changes", result.Version.Changes.String(),
		"location", result.Location)
	return result, nil
}
