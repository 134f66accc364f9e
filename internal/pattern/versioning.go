package pattern

import (
	"fmt"
	"strings"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/version"
)

// VersionChange classifies a schema mutation
type VersionChange int

const (
	NoChange VersionChange = iota
	NonBreaking
	Breaking
)

func (c VersionChange) String() string {
	switch c {
	case NonBreaking:
		return "NonBreaking"
	case Breaking:
		return "Breaking"
	default:
		return "NoChange"
	}
}

// ParseVersionChange is the inverse of VersionChange.String
func ParseVersionChange(s string) VersionChange {
	switch strings.ToLower(s) {
	case "nonbreaking":
		return NonBreaking
	case "breaking":
		return Breaking
	default:
		return NoChange
	}
}

const (
	// InitialVersion is the version of a pattern that has never been built
	InitialVersion = "0.0.0"
	// AutoIncrement asks the version engine to pick the next version from pending changes
	AutoIncrement = "auto"
)

// VersionChangeEntry records one classified mutation since the last build
type VersionChangeEntry struct {
	Change      VersionChange
	Description string
}

// ToolkitVersion is the version history of a pattern
type ToolkitVersion struct {
	Current     string
	LastChanges VersionChange
	ChangeLog   []VersionChangeEntry
}

// NewToolkitVersion creates the history of a new pattern
func NewToolkitVersion() *ToolkitVersion {
	return &ToolkitVersion{
		Current:     InitialVersion,
		LastChanges: NoChange,
	}
}

// RegisterChange records a mutation; pending changes only ever escalate
func (tv *ToolkitVersion) RegisterChange(change VersionChange, format string, args ...interface{}) {
	if change == NoChange {
		return
	}
	description := format
	if len(args) > 0 {
		description = fmt.Sprintf(format, args...)
	}
	tv.ChangeLog = append(tv.ChangeLog, VersionChangeEntry{Change: change, Description: description})
	if change > tv.LastChanges {
		tv.LastChanges = change
	}
}

// VersionUpdateResult describes the outcome of UpdateVersion
type VersionUpdateResult struct {
	Previous string
	Version  string
	Changes  VersionChange
	Log      []VersionChangeEntry
}

// UpdateVersion resolves a version instruction into the next version and resets pending changes.
//
// An empty instruction or "auto" advances the minor number for pending breaking changes, the
// patch number for non-breaking ones, and keeps the version when nothing changed. Any other
// instruction must be a semantic version no lower than the current one.
func (tv *ToolkitVersion) UpdateVersion(instruction string) (VersionUpdateResult, error) {
	current, err := version.Parse(tv.Current)
	if err != nil {
		return VersionUpdateResult{}, errs.Validation("the current toolkit version '%s' is invalid", tv.Current)
	}

	var next version.Version
	instruction = strings.TrimSpace(instruction)
	if instruction == "" || strings.EqualFold(instruction, AutoIncrement) {
		switch tv.LastChanges {
		case Breaking:
			next = current.NextMinor()
		case NonBreaking:
			next = current.NextPatch()
		default:
			next = current
		}
	} else {
		requested, err := version.Parse(instruction)
		if err != nil {
			return VersionUpdateResult{}, errs.Validation("the version instruction '%s' is not a valid semantic version", instruction)
		}
		if requested.Compare(current) < 0 {
			return VersionUpdateResult{}, errs.Validation("the version '%s' is lower than the current version '%s'", instruction, tv.Current)
		}
		next = requested
	}

	result := VersionUpdateResult{
		Previous: tv.Current,
		Version:  next.String(),
		Changes:  tv.LastChanges,
		Log:      tv.ChangeLog,
	}

	tv.Current = next.String()
	tv.LastChanges = NoChange
	tv.ChangeLog = nil

	return result, nil
}
