package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/config"
	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/toolkit"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{BaseDir: dir, ExportDir: filepath.Join(dir, "export")}

	storage, err := NewStorage(cfg)
	require.NoError(t, err)
	return storage
}

func newTestPattern(t *testing.T, name string) *pattern.PatternDefinition {
	t.Helper()
	p, err := pattern.NewPattern(name)
	require.NoError(t, err)
	element, err := p.AddElement("anelement", pattern.ElementOptions{Cardinality: pattern.CardinalityOne})
	require.NoError(t, err)
	_, err = element.AddAttribute("anattribute", pattern.DataTypeString, false, "adefault", nil)
	require.NoError(t, err)
	return p
}

func TestNewStorageCreatesDirectories(t *testing.T) {
	storage := setupTestStorage(t)

	for _, sub := range []string{"patterns", "toolkits", "drafts", "codetemplates", "export"} {
		_, err := os.Stat(filepath.Join(storage.GetBaseDir(), sub))
		assert.NoError(t, err, sub)
	}
}

func TestIndexOperations(t *testing.T) {
	index := NewIndex()
	index.AddEntity(EntitySummary{ID: "1", Name: "first"})
	index.AddEntity(EntitySummary{ID: "2", Name: "second"})

	id, ok := index.ResolveID("first")
	assert.True(t, ok)
	assert.Equal(t, "1", id)
	id, ok = index.ResolveID("2")
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	index.AddEntity(EntitySummary{ID: "1", Name: "renamed"})
	_, ok = index.ResolveID("first")
	assert.False(t, ok, "old names are dropped on rename")

	summaries := index.ListSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "renamed", summaries[0].Name)

	index.RemoveEntity("renamed")
	_, ok = index.GetSummary("1")
	assert.False(t, ok)
	assert.Len(t, index.NameToID, 1)
}

func TestPatternOperations(t *testing.T) {
	storage := setupTestStorage(t)
	p := newTestPattern(t, "apattern")

	require.NoError(t, storage.UpsertPattern(p))
	assert.True(t, storage.PatternExists("apattern"))
	assert.True(t, storage.PatternExists(p.ID))

	loaded, err := storage.LoadPattern("apattern")
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	require.NotNil(t, loaded.FindElement("anelement"))
	assert.Same(t, loaded.Root(), loaded.FindElement("anelement").Parent())

	summaries, err := storage.ListPatterns()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "0.0.0", summaries[0].Version)

	require.NoError(t, storage.DeletePattern("apattern"))
	_, err = storage.LoadPattern("apattern")
	assert.True(t, errs.IsNotFound(err))
	assert.NoError(t, storage.Validate())
}

func TestPatternNamesAreUnique(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.UpsertPattern(newTestPattern(t, "apattern")))

	err := storage.UpsertPattern(newTestPattern(t, "apattern"))
	assert.True(t, errs.IsValidation(err))
}

func TestRenamedPatternIsFoundByNewName(t *testing.T) {
	storage := setupTestStorage(t)
	p := newTestPattern(t, "apattern")
	require.NoError(t, storage.UpsertPattern(p))

	require.NoError(t, p.Rename("another"))
	require.NoError(t, storage.UpsertPattern(p))

	assert.False(t, storage.PatternExists("apattern"))
	assert.True(t, storage.PatternExists("another"))
}

func TestLocalState(t *testing.T) {
	storage := setupTestStorage(t)

	state, err := storage.LoadState()
	require.NoError(t, err)
	assert.Empty(t, state.CurrentPatternID)

	require.NoError(t, storage.UpdateState(func(s *LocalState) {
		s.CurrentPatternID = "apattern"
	}))
	require.NoError(t, storage.UpdateState(func(s *LocalState) {
		s.CurrentDraftID = "adraft"
	}))

	state, err = storage.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "apattern", state.CurrentPatternID)
	assert.Equal(t, "adraft", state.CurrentDraftID)

	entries, err := os.ReadDir(storage.GetBaseDir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp", "no temp files are left behind")
	}
}

func TestCodeTemplateContent(t *testing.T) {
	storage := setupTestStorage(t)
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return stamp }

	p := newTestPattern(t, "apattern")
	source := filepath.Join(t.TempDir(), "afile.cs")
	require.NoError(t, os.WriteFile(source, []byte("class {{Name}} {}"), 0o644))
	tmpl, err := p.AddCodeTemplate("", source, stamp)
	require.NoError(t, err)

	modified, err := storage.UploadCodeTemplate(p, tmpl, source)
	require.NoError(t, err)
	assert.Equal(t, stamp, modified)

	content, err := storage.DownloadCodeTemplate(p, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "class {{Name}} {}", string(content.Content))
	assert.Equal(t, stamp, content.LastModifiedUtc)

	require.NoError(t, storage.DeleteCodeTemplateContent(p, tmpl))
	_, err = storage.DownloadCodeTemplate(p, tmpl)
	assert.True(t, errs.IsNotFound(err))

	_, err = storage.UploadCodeTemplate(p, tmpl, filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errs.IsNotFound(err))
}

func TestPackExportAndInstall(t *testing.T) {
	storage := setupTestStorage(t)
	p := newTestPattern(t, "apattern")
	packager := toolkit.NewPackager(storage, storage, "1.0.0")

	result, err := packager.Pack(p, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storage.config.ExportDir, "apattern_0.0.1.toolkit"), result.Location)
	assert.True(t, storage.PatternExists("apattern"))

	installer, err := storage.ReadInstaller(result.Location)
	require.NoError(t, err)
	installed, err := packager.UnPack(installer)
	require.NoError(t, err)
	assert.Equal(t, p.ID, installed.ID)

	loaded, err := storage.LoadToolkit("apattern")
	require.NoError(t, err)
	assert.Equal(t, "0.0.1", loaded.Version)
	assert.Equal(t, "1.0.0", loaded.RuntimeVersion)

	_, err = storage.ReadInstaller(filepath.Join(t.TempDir(), "none.toolkit"))
	assert.True(t, errs.IsNotFound(err))
}

func TestDraftOperations(t *testing.T) {
	storage := setupTestStorage(t)
	p := newTestPattern(t, "apattern")
	tk := &toolkit.ToolkitDefinition{ID: p.ID, Version: "0.1.0", RuntimeVersion: "1.0.0", Pattern: p}

	d, err := draft.NewDraft("adraft", tk)
	require.NoError(t, err)
	element, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)
	require.NoError(t, element.SetProperties(map[string]string{"anattribute": "avalue"}))
	require.NoError(t, storage.SaveDraft(d))

	loaded, err := storage.LoadDraft("adraft")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", loaded.ToolkitVersion())
	value, ok := loaded.Model.Property("anelement").Value("anattribute")
	assert.True(t, ok)
	assert.Equal(t, "avalue", value)

	summaries, err := storage.ListDrafts()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "0.1.0", summaries[0].Version)

	require.NoError(t, storage.DeleteDraft(d.ID))
	assert.False(t, storage.DraftExists("adraft"))
}

func TestValidateDetectsOrphanedFiles(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.UpsertPattern(newTestPattern(t, "apattern")))
	require.NoError(t, storage.Validate())

	orphan := filepath.Join(storage.config.PatternsDir(), "orphan.json")
	require.NoError(t, os.WriteFile(orphan, []byte("{}"), 0o644))
	assert.Error(t, storage.Validate())
}
