package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/persist"
)

const (
	indexFile     = "index.json"
	fileExtension = ".json"
)

// repository stores one kind of entity as one JSON file per id, next to an index.json
// that maps names to ids
type repository[T persist.Persistable] struct {
	kind      string
	typeName  string
	dir       string
	factory   *persist.Factory
	summarise func(T) EntitySummary
	now       func() time.Time
}

func newRepository[T persist.Persistable](dir, kind, typeName string, factory *persist.Factory, summarise func(T) EntitySummary) (*repository[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &repository[T]{
		kind:      kind,
		typeName:  typeName,
		dir:       dir,
		factory:   factory,
		summarise: summarise,
		now:       time.Now,
	}, nil
}

func (r *repository[T]) entityPath(id string) string {
	return filepath.Join(r.dir, id+fileExtension)
}

func (r *repository[T]) indexPath() string {
	return filepath.Join(r.dir, indexFile)
}

// loadIndex loads the index, returning an empty one when none was written yet
func (r *repository[T]) loadIndex() (*Index, error) {
	index := NewIndex()

	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return index, nil
		}
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	if index.NameToID == nil {
		index.NameToID = make(map[string]string)
	}
	if index.Summaries == nil {
		index.Summaries = make(map[string]EntitySummary)
	}

	return index, nil
}

func (r *repository[T]) saveIndex(index *Index) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), data); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// resolveID resolves a name or id to an id
func (r *repository[T]) resolveID(nameOrID string) (string, error) {
	index, err := r.loadIndex()
	if err != nil {
		return "", err
	}

	id, found := index.ResolveID(nameOrID)
	if !found {
		return "", errs.NotFound("the %s '%s' does not exist", r.kind, nameOrID)
	}
	return id, nil
}

// save writes the entity and updates the index. Names are unique within a repository.
func (r *repository[T]) save(entity T) error {
	summary := r.summarise(entity)
	summary.UpdatedAt = r.now().UTC()

	index, err := r.loadIndex()
	if err != nil {
		return err
	}
	if owner, exists := index.NameToID[summary.Name]; exists && owner != summary.ID {
		return errs.Validation("a %s named '%s' already exists", r.kind, summary.Name)
	}

	data, err := persist.Marshal(entity)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(r.entityPath(summary.ID), data); err != nil {
		return fmt.Errorf("failed to write entity file: %w", err)
	}

	index.AddEntity(summary)
	return r.saveIndex(index)
}

// load reads an entity by name or id
func (r *repository[T]) load(nameOrID string) (T, error) {
	var zero T
	id, err := r.resolveID(nameOrID)
	if err != nil {
		return zero, err
	}

	data, err := os.ReadFile(r.entityPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, errs.NotFound("the %s '%s' is indexed but its file is missing", r.kind, nameOrID)
		}
		return zero, fmt.Errorf("failed to read entity file: %w", err)
	}

	entity, err := persist.Unmarshal[T](r.factory, r.typeName, data)
	if err != nil {
		return zero, fmt.Errorf("failed to load %s '%s': %w", r.kind, nameOrID, err)
	}
	return entity, nil
}

// delete removes an entity file and its index entry
func (r *repository[T]) delete(nameOrID string) error {
	id, err := r.resolveID(nameOrID)
	if err != nil {
		return err
	}

	if err := os.Remove(r.entityPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove entity file: %w", err)
	}

	index, err := r.loadIndex()
	if err != nil {
		return err
	}
	index.RemoveEntity(id)
	return r.saveIndex(index)
}

// exists reports whether an entity is indexed under the name or id
func (r *repository[T]) exists(nameOrID string) bool {
	_, err := r.resolveID(nameOrID)
	return err == nil
}

// list returns the summaries of all entities ordered by name
func (r *repository[T]) list() ([]EntitySummary, error) {
	index, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	return index.ListSummaries(), nil
}

// verify checks that the index and the entity files agree
func (r *repository[T]) verify() error {
	index, err := r.loadIndex()
	if err != nil {
		return err
	}

	for id := range index.Summaries {
		if _, err := os.Stat(r.entityPath(id)); os.IsNotExist(err) {
			return fmt.Errorf("missing file for %s %s", r.kind, id)
		}
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read %s directory: %w", r.kind, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == indexFile || !strings.HasSuffix(name, fileExtension) {
			continue
		}
		id := strings.TrimSuffix(name, fileExtension)
		if _, exists := index.Summaries[id]; !exists {
			return fmt.Errorf("orphaned %s file: %s", r.kind, name)
		}
	}
	return nil
}
