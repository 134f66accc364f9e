package storage

import (
	"sort"
	"time"
)

// EntitySummary is the index.json record of a stored entity
type EntitySummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Index represents the structure of index.json files for entity management.
// Provides fast name-to-id resolution and entity summaries.
type Index struct {
	NameToID  map[string]string        `json:"name_to_id"`
	Summaries map[string]EntitySummary `json:"summaries"`
}

// NewIndex creates a new empty index
func NewIndex() *Index {
	return &Index{
		NameToID:  make(map[string]string),
		Summaries: make(map[string]EntitySummary),
	}
}

// AddEntity adds an entity to the index, dropping any previous name it was known by
func (idx *Index) AddEntity(summary EntitySummary) {
	if previous, exists := idx.Summaries[summary.ID]; exists && previous.Name != summary.Name {
		delete(idx.NameToID, previous.Name)
	}
	idx.NameToID[summary.Name] = summary.ID
	idx.Summaries[summary.ID] = summary
}

// RemoveEntity removes an entity from the index
func (idx *Index) RemoveEntity(nameOrID string) {
	id, exists := idx.ResolveID(nameOrID)
	if !exists {
		return
	}
	delete(idx.Summaries, id)

	for name, mapped := range idx.NameToID {
		if mapped == id {
			delete(idx.NameToID, name)
		}
	}
}

// ResolveID resolves a name or id to an id
func (idx *Index) ResolveID(nameOrID string) (string, bool) {
	if _, exists := idx.Summaries[nameOrID]; exists {
		return nameOrID, true
	}

	if id, exists := idx.NameToID[nameOrID]; exists {
		return id, true
	}

	return "", false
}

// GetSummary gets the summary for an entity by name or id
func (idx *Index) GetSummary(nameOrID string) (EntitySummary, bool) {
	id, exists := idx.ResolveID(nameOrID)
	if !exists {
		return EntitySummary{}, false
	}

	summary, exists := idx.Summaries[id]
	return summary, exists
}

// ListSummaries returns all entity summaries ordered by name
func (idx *Index) ListSummaries() []EntitySummary {
	summaries := make([]EntitySummary, 0, len(idx.Summaries))
	for _, summary := range idx.Summaries {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}
