package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// LocalState records what the user is currently working on
type LocalState struct {
	CurrentPatternID string `json:"current_pattern_id,omitempty"`
	CurrentDraftID   string `json:"current_draft_id,omitempty"`
}

// LoadState reads the local state, returning an empty state when none was saved yet
func (s *Storage) LoadState() (*LocalState, error) {
	state := &LocalState{}
	data, err := os.ReadFile(s.config.StateFile())
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to read local state: %w", err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse local state: %w", err)
	}
	return state, nil
}

// SaveState replaces the local state
func (s *Storage) SaveState(state *LocalState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal local state: %w", err)
	}
	if err := writeFileAtomic(s.config.StateFile(), data); err != nil {
		return fmt.Errorf("failed to write local state: %w", err)
	}
	return nil
}

// UpdateState applies fn to the local state and saves it
func (s *Storage) UpdateState(fn func(*LocalState)) error {
	state, err := s.LoadState()
	if err != nil {
		return err
	}
	fn(state)
	return s.SaveState(state)
}
