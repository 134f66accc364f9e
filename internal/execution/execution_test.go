package execution

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/templating"
	"github.com/n1rna/automate/internal/toolkit"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	err   error
}

func (r *fakeRunner) Run(_ context.Context, dir, name string, args []string) (string, error) {
	r.calls = append(r.calls, call{dir: dir, name: name, args: args})
	return "ran " + name, r.err
}

const workDir = "/work"

func newTestDraft(t *testing.T) *draft.DraftDefinition {
	t.Helper()
	modified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := pattern.NewPattern("apattern")
	require.NoError(t, err)
	_, err = p.AddAttribute("aname", pattern.DataTypeString, false, "World", nil)
	require.NoError(t, err)
	greeting, err := p.AddCodeTemplate("greeting", "/src/greeting.txt", modified)
	require.NoError(t, err)
	_, err = p.AddCodeTemplateCommand("generate", "greeting", false, "out/{{aname}}.txt")
	require.NoError(t, err)
	_, err = p.AddCliCommand("announce", "echo", `hello "{{aname}} there"`)
	require.NoError(t, err)

	services, err := p.AddElement("services", pattern.ElementOptions{Cardinality: pattern.CardinalityZeroOrMany, AutoCreate: true})
	require.NoError(t, err)
	_, err = services.AddAttribute("sname", pattern.DataTypeString, true, "", nil)
	require.NoError(t, err)
	service, err := services.AddCodeTemplate("service", "/src/service.txt", modified)
	require.NoError(t, err)
	_, err = services.AddCodeTemplateCommand("genservice", "service", true, "services/{{sname}}.txt")
	require.NoError(t, err)

	_, err = p.AddCommandLaunchPoint("everything", []string{"generate", "genservice", "announce"})
	require.NoError(t, err)

	tk := &toolkit.ToolkitDefinition{
		ID:             p.ID,
		Version:        "0.1.0",
		RuntimeVersion: "1.0.0",
		Pattern:        p,
		CodeTemplateFiles: []*toolkit.CodeTemplateFile{
			{ID: greeting.ID, Contents: []byte("Hello {{aname}}")},
			{ID: service.ID, Contents: []byte("Service {{sname}} of {{Parent.aname}}")},
		},
	}
	d, err := draft.NewDraft("adraft", tk)
	require.NoError(t, err)
	return d
}

func newTestExecutor() (*Executor, *fakeRunner) {
	runner := &fakeRunner{}
	return &Executor{
		Engine:    templating.NewEngine(),
		Runner:    runner,
		Fs:        afero.NewMemMapFs(),
		TargetDir: workDir,
	}, runner
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestExecuteCodeTemplateCommand(t *testing.T) {
	d := newTestDraft(t)
	x, _ := newTestExecutor()

	result, err := x.Execute(context.Background(), d, d.Model, "generate")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Commands, 1)

	path := filepath.Join(workDir, "out", "World.txt")
	assert.Equal(t, path, result.Commands[0].FilePath)
	assert.Equal(t, "Hello World", readFile(t, x.Fs, path))

	require.NoError(t, afero.WriteFile(x.Fs, path, []byte("edited"), 0o644))
	_, err = x.Execute(context.Background(), d, d.Model, "generate")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", readFile(t, x.Fs, path), "commands that are not one-off overwrite")
}

func TestExecuteOneOffSkipsExistingFiles(t *testing.T) {
	d := newTestDraft(t)
	x, _ := newTestExecutor()
	item, err := d.Model.Property("services").MaterialiseCollectionItem()
	require.NoError(t, err)
	require.NoError(t, item.SetProperties(map[string]string{"sname": "billing"}))

	result, err := x.Execute(context.Background(), d, item, "genservice")
	require.NoError(t, err)
	path := filepath.Join(workDir, "services", "billing.txt")
	assert.False(t, result.Commands[0].Skipped)
	assert.Equal(t, "Service billing of World", readFile(t, x.Fs, path))

	require.NoError(t, afero.WriteFile(x.Fs, path, []byte("edited"), 0o644))
	result, err = x.Execute(context.Background(), d, item, "genservice")
	require.NoError(t, err)
	assert.True(t, result.Commands[0].Skipped)
	assert.Equal(t, "edited", readFile(t, x.Fs, path))
}

func TestExecuteCliCommand(t *testing.T) {
	d := newTestDraft(t)
	x, runner := newTestExecutor()
	require.NoError(t, d.Model.SetProperties(map[string]string{"aname": "Earth"}))

	result, err := x.Execute(context.Background(), d, d.Model, "announce")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, call{dir: workDir, name: "echo", args: []string{"hello", "Earth there"}}, runner.calls[0])
	assert.Equal(t, "ran echo", result.Commands[0].Output)

	runner.err = errors.New("exit status 1")
	result, err = x.Execute(context.Background(), d, d.Model, "announce")
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())
	assert.ErrorContains(t, result.Err(), "announce")
}

func TestExecuteLaunchPoint(t *testing.T) {
	d := newTestDraft(t)
	x, runner := newTestExecutor()
	container := d.Model.Property("services")
	for _, name := range []string{"billing", "orders"} {
		item, err := container.MaterialiseCollectionItem()
		require.NoError(t, err)
		require.NoError(t, item.SetProperties(map[string]string{"sname": name}))
	}

	result, err := x.Execute(context.Background(), d, d.Model, "everything")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Commands, 4)

	var names []string
	for _, cmd := range result.Commands {
		names = append(names, cmd.CommandName)
	}
	assert.Equal(t, []string{"generate", "genservice", "genservice", "announce"}, names)
	assert.Equal(t, "Service orders of World", readFile(t, x.Fs, filepath.Join(workDir, "services", "orders.txt")))
	assert.Len(t, runner.calls, 1)
}

func TestExecuteRequiresValidItems(t *testing.T) {
	d := newTestDraft(t)
	x, runner := newTestExecutor()
	_, err := d.Model.Property("services").MaterialiseCollectionItem()
	require.NoError(t, err)

	_, err = x.Execute(context.Background(), d, d.Model, "everything")
	assert.True(t, errs.IsValidation(err))
	assert.Empty(t, runner.calls)
}

func TestExecuteRejectsUnknownAutomationAndContainers(t *testing.T) {
	d := newTestDraft(t)
	x, _ := newTestExecutor()

	_, err := x.Execute(context.Background(), d, d.Model, "missing")
	assert.True(t, errs.IsNotFound(err))

	_, err = x.Execute(context.Background(), d, d.Model.Property("services"), "genservice")
	assert.True(t, errs.IsValidation(err))
}

func TestTargetPathStaysInsideTargetDir(t *testing.T) {
	x, _ := newTestExecutor()

	path, err := x.targetPath("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "a", "b.txt"), path)

	for _, rendered := range []string{"", "/etc/passwd", "../outside.txt", "a/../../outside.txt"} {
		_, err := x.targetPath(rendered)
		assert.True(t, errs.IsValidation(err), rendered)
	}
}
