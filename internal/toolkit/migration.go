package toolkit

import (
	"bytes"
	"fmt"

	"github.com/n1rna/automate/internal/pattern"
)

// MigrationEntry is one logged change made while migrating
type MigrationEntry struct {
	Change  pattern.VersionChange
	Message string
}

// MigrationResult accumulates the log of a migration. Breaking changes are logged, not fatal;
// only an explicitly flagged failure makes the migration unsuccessful.
type MigrationResult struct {
	Log     []MigrationEntry
	failure string
}

// NewMigrationResult returns an empty, successful result
func NewMigrationResult() *MigrationResult {
	return &MigrationResult{}
}

// Add appends a log entry
func (r *MigrationResult) Add(change pattern.VersionChange, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	r.Log = append(r.Log, MigrationEntry{Change: change, Message: msg})
}

// Fail flags the migration as irrecoverable
func (r *MigrationResult) Fail(format string, args ...interface{}) {
	r.failure = fmt.Sprintf(format, args...)
}

// IsSuccess reports whether the migration completed
func (r *MigrationResult) IsSuccess() bool {
	return r.failure == ""
}

// Failure returns the reason the migration failed, if it did
func (r *MigrationResult) Failure() string {
	return r.failure
}

// HasBreaking reports whether any breaking change was logged
func (r *MigrationResult) HasBreaking() bool {
	for _, entry := range r.Log {
		if entry.Change == pattern.Breaking {
			return true
		}
	}
	return false
}

// MigratePattern rebinds the toolkit to the pattern and version of latest, and brings its
// code template files in line with those of latest
func (t *ToolkitDefinition) MigratePattern(latest *ToolkitDefinition, result *MigrationResult) {
	if latest.ID != t.ID {
		result.Fail("the toolkit '%s' cannot be migrated to the unrelated toolkit '%s'", t.Name(), latest.Name())
		return
	}

	previous := t.Pattern
	if latest.Pattern != nil {
		frozen, err := latest.Pattern.Clone()
		if err != nil {
			result.Fail("the pattern of toolkit '%s' could not be copied: %s", latest.Name(), err)
			return
		}
		t.Pattern = frozen
	}
	t.Version = latest.Version
	t.RuntimeVersion = latest.RuntimeVersion

	templateName := func(id string) string {
		for _, p := range []*pattern.PatternDefinition{t.Pattern, previous} {
			if p == nil {
				continue
			}
			if tmpl := p.FindCodeTemplateByID(id); tmpl != nil {
				return tmpl.Name
			}
		}
		return id
	}

	kept := make([]*CodeTemplateFile, 0, len(t.CodeTemplateFiles))
	for _, file := range t.CodeTemplateFiles {
		if latest.FindCodeTemplateFile(file.ID) == nil {
			result.Add(pattern.Breaking, "code template '%s' was removed", templateName(file.ID))
			continue
		}
		kept = append(kept, file)
	}
	t.CodeTemplateFiles = kept

	for _, latestFile := range latest.CodeTemplateFiles {
		existing := t.FindCodeTemplateFile(latestFile.ID)
		if existing == nil {
			t.CodeTemplateFiles = append(t.CodeTemplateFiles, &CodeTemplateFile{
				ID:       latestFile.ID,
				Contents: append([]byte{}, latestFile.Contents...),
			})
			result.Add(pattern.NonBreaking, "code template '%s' was added", templateName(latestFile.ID))
			continue
		}
		if !bytes.Equal(existing.Contents, latestFile.Contents) {
			existing.Contents = append([]byte{}, latestFile.Contents...)
			result.Add(pattern.NonBreaking, "code template '%s' was updated", templateName(latestFile.ID))
		}
	}
}
