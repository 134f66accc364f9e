package application

import (
	"context"
	"strings"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/execution"
	"github.com/n1rna/automate/internal/logger"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/toolkit"
)

// RuntimeService installs toolkits and works with the drafts created from them
type RuntimeService struct {
	repo     Repository
	packager *toolkit.Packager
	executor *execution.Executor
}

// NewRuntimeService creates a runtime service. The executor runs automation of drafts.
func NewRuntimeService(repo Repository, runtimeVersion string, executor *execution.Executor) *RuntimeService {
	return &RuntimeService{
		repo:     repo,
		packager: toolkit.NewPackager(repo, repo, runtimeVersion),
		executor: executor,
	}
}

// InstallToolkit installs the toolkit installer at path, replacing any installed version
func (s *RuntimeService) InstallToolkit(path string) (*toolkit.ToolkitDefinition, error) {
	installer, err := s.repo.ReadInstaller(path)
	if err != nil {
		return nil, err
	}
	t, err := s.packager.UnPack(installer)
	if err != nil {
		return nil, err
	}
	logger.With("toolkit", t.Name()).Infow("installed toolkit", "version", t.Version, "runtime", t.RuntimeVersion)
	return t, nil
}

// ListToolkits returns all installed toolkits
func (s *RuntimeService) ListToolkits() ([]storage.EntitySummary, error) {
	return s.repo.ListToolkits()
}

// NewDraft creates a draft of an installed toolkit and makes it the current draft
func (s *RuntimeService) NewDraft(toolkitName, name string) (*draft.DraftDefinition, error) {
	t, err := s.repo.LoadToolkit(toolkitName)
	if err != nil {
		return nil, err
	}
	if s.repo.DraftExists(name) {
		return nil, errs.Validation("a draft named '%s' already exists", name)
	}
	d, err := draft.NewDraft(name, t)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveDraft(d); err != nil {
		return nil, err
	}
	if err := s.setCurrent(d.ID); err != nil {
		return nil, err
	}
	logger.Debug("created draft %s of toolkit %s %s", d.Name, t.Name(), t.Version)
	return d, nil
}

func (s *RuntimeService) setCurrent(id string) error {
	return s.repo.UpdateState(func(state *storage.LocalState) {
		state.CurrentDraftID = id
	})
}

// SwitchDraft makes another draft the current one
func (s *RuntimeService) SwitchDraft(nameOrID string) (*draft.DraftDefinition, error) {
	d, err := s.repo.LoadDraft(nameOrID)
	if err != nil {
		return nil, err
	}
	if err := s.setCurrent(d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDrafts returns all drafts and the id of the current one
func (s *RuntimeService) ListDrafts() ([]storage.EntitySummary, string, error) {
	summaries, err := s.repo.ListDrafts()
	if err != nil {
		return nil, "", err
	}
	state, err := s.repo.LoadState()
	if err != nil {
		return nil, "", err
	}
	return summaries, state.CurrentDraftID, nil
}

// DeleteDraft removes a draft
func (s *RuntimeService) DeleteDraft(nameOrID string) error {
	d, err := s.repo.LoadDraft(nameOrID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDraft(d.ID); err != nil {
		return err
	}
	logger.Debug("deleted draft %s", d.Name)
	return s.repo.UpdateState(func(state *storage.LocalState) {
		if state.CurrentDraftID == d.ID {
			state.CurrentDraftID = ""
		}
	})
}

// CurrentDraft loads the current draft without checking it against the installed toolkit
func (s *RuntimeService) CurrentDraft() (*draft.DraftDefinition, error) {
	state, err := s.repo.LoadState()
	if err != nil {
		return nil, err
	}
	if state.CurrentDraftID == "" || !s.repo.DraftExists(state.CurrentDraftID) {
		return nil, errs.NotFound("there is no current draft, create one or switch to an existing one")
	}
	return s.repo.LoadDraft(state.CurrentDraftID)
}

// compatibleDraft loads the current draft and verifies that it matches the installed toolkit
func (s *RuntimeService) compatibleDraft() (*draft.DraftDefinition, error) {
	d, err := s.CurrentDraft()
	if err != nil {
		return nil, err
	}
	installed, err := s.repo.LoadToolkit(d.Toolkit.ID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Compatibility("the toolkit '%s' of draft '%s' is not installed", d.Toolkit.Name(), d.Name)
		}
		return nil, err
	}
	if err := draft.VerifyDraftCompatibility(d.ToolkitVersion(), installed.Version); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies a change to the current draft and saves it. Nothing is saved when fn fails.
func (s *RuntimeService) Update(fn func(d *draft.DraftDefinition) error) (*draft.DraftDefinition, error) {
	d, err := s.compatibleDraft()
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDraft(d); err != nil {
		return nil, err
	}
	logger.Debug("saved draft %s", d.Name)
	return d, nil
}

// FindItem resolves an instance path expression to a configured item. An empty expression is the root.
func FindItem(d *draft.DraftDefinition, expression string) (*draft.DraftItem, error) {
	if strings.TrimSpace(expression) == "" {
		return d.Model, nil
	}
	item, err := draft.Resolve(d, expression)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errs.NotFound("the item '%s' does not exist in draft '%s'", expression, d.Name)
	}
	return item, nil
}

// AddItem configures the element addressed by expression: a singular element is
// materialised, a collection gets a new item
func (s *RuntimeService) AddItem(expression string) (*draft.DraftItem, error) {
	var added *draft.DraftItem
	_, err := s.Update(func(d *draft.DraftDefinition) error {
		segments, err := pattern.ParseExpression(expression)
		if err != nil {
			return err
		}
		name := segments[len(segments)-1]
		parent := d.Model
		if len(segments) > 1 {
			parent, err = FindItem(d, "{"+strings.Join(segments[:len(segments)-1], ".")+"}")
			if err != nil {
				return err
			}
		}
		target := parent.Property(name)
		if target == nil {
			return errs.NotFound("the element '%s' does not exist on '%s'", name, parent.Name())
		}
		if target.IsContainer() {
			added, err = target.MaterialiseCollectionItem()
		} else {
			added, err = target.Materialise()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// SetProperties assigns attribute values of an item
func (s *RuntimeService) SetProperties(expression string, properties map[string]string) (*draft.DraftItem, error) {
	return s.updateItem(expression, func(item *draft.DraftItem) error {
		return item.SetProperties(properties)
	})
}

// ResetProperties restores the default values of an item
func (s *RuntimeService) ResetProperties(expression string) (*draft.DraftItem, error) {
	return s.updateItem(expression, (*draft.DraftItem).ResetAllProperties)
}

// ClearCollection removes all items of a collection
func (s *RuntimeService) ClearCollection(expression string) (*draft.DraftItem, error) {
	return s.updateItem(expression, (*draft.DraftItem).ClearCollectionItems)
}

// DeleteItem un-configures an item; a collection item is removed from its collection
func (s *RuntimeService) DeleteItem(expression string) error {
	_, err := s.updateItem(expression, (*draft.DraftItem).UnMaterialise)
	return err
}

func (s *RuntimeService) updateItem(expression string, fn func(*draft.DraftItem) error) (*draft.DraftItem, error) {
	var target *draft.DraftItem
	_, err := s.Update(func(d *draft.DraftDefinition) error {
		item, err := FindItem(d, expression)
		if err != nil {
			return err
		}
		target = item
		return fn(item)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// Validate validates the item addressed by expression, or the whole draft
func (s *RuntimeService) Validate(expression string) ([]draft.ValidationResult, error) {
	d, err := s.compatibleDraft()
	if err != nil {
		return nil, err
	}
	item, err := FindItem(d, expression)
	if err != nil {
		return nil, err
	}
	return item.Validate(), nil
}

// Upgrade migrates the current draft to the installed version of its toolkit. An upgrade
// with breaking changes is only saved when force is set.
func (s *RuntimeService) Upgrade(force bool) (*draft.DraftUpgradeResult, error) {
	d, err := s.CurrentDraft()
	if err != nil {
		return nil, err
	}
	latest, err := s.repo.LoadToolkit(d.Toolkit.ID)
	if err != nil {
		return nil, err
	}

	result, err := d.Upgrade(latest)
	if err != nil {
		return nil, err
	}
	if !result.IsSuccess() || result.FromVersion == result.ToVersion {
		return result, nil
	}
	if result.HasBreaking() && !force {
		return result, errs.Validation("upgrading draft '%s' to %s has breaking changes, upgrade with force to accept them", d.Name, result.ToVersion)
	}
	if err := s.repo.SaveDraft(d); err != nil {
		return nil, err
	}
	logger.With("draft", d.Name).Infow("upgraded draft", "from", result.FromVersion, "to", result.ToVersion, "entries", len(result.Log))
	return result, nil
}

// Run executes an automation of the item addressed by expression
func (s *RuntimeService) Run(ctx context.Context, automation, expression string) (*execution.Result, error) {
	d, err := s.compatibleDraft()
	if err != nil {
		return nil, err
	}
	item, err := FindItem(d, expression)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, d, item, automation)
}
