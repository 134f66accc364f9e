package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/config"
)

type cli struct {
	t      *testing.T
	home   string
	target string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, home: t.TempDir(), target: t.TempDir()}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--dir", c.home, "--target", c.target}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"name=billing", "url=http://a?b=c", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "billing", "url": "http://a?b=c", "empty": ""}, values)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=value"})
	assert.Error(t, err)
}

func TestVersionIsRuntimeVersion(t *testing.T) {
	out := newCLI(t).mustRun("--version")
	assert.Equal(t, config.ProductName+" version "+config.RuntimeVersion+"\n", out)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func TestServicesRequired(t *testing.T) {
	cmd := NewPatternCommand("authoring")
	cmd.SetArgs([]string{"list"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SilenceErrors = true
	err := cmd.Execute()
	assert.EqualError(t, err, "services not initialized")
}

func TestInfo(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("info")
	assert.Contains(t, out, "automate ")
	assert.Contains(t, out, c.home)
}

func TestUnknownFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("pattern", "list", "--format", "xml")
	assert.Error(t, err)
}

func TestAuthorInstallConfigureAndRun(t *testing.T) {
	c := newCLI(t)

	source := filepath.Join(t.TempDir(), "service.txt")
	require.NoError(t, os.WriteFile(source, []byte("service {{sname}} on {{port}}"), 0o644))

	c.mustRun("pattern", "create", "apattern")
	c.mustRun("pattern", "add-collection", "services", "--attribute", "sname:string:true")
	c.mustRun("pattern", "add-attribute", "port", "--element", "{services}", "--type", "int", "--default", "80")
	c.mustRun("pattern", "add-codetemplate", source, "--element", "{services}")
	c.mustRun("pattern", "add-codetemplate-command", "service", "--element", "{services}",
		"--name", "generate", "--targetpath", "{{sname}}.txt")

	_, err := c.run("pattern", "add-element", "many", "--cardinality", "ZeroOrMany")
	assert.Error(t, err, "add-element refuses collection cardinalities")

	view := c.mustRun("pattern", "view")
	assert.Contains(t, view, "services")
	assert.Contains(t, view, "generate")

	c.mustRun("pattern", "build")
	installer := filepath.Join(c.home, "export", "apattern_0.0.1.toolkit")
	require.FileExists(t, installer)

	c.mustRun("toolkit", "install", installer)
	assert.Contains(t, c.mustRun("toolkit", "list"), "apattern")

	c.mustRun("draft", "new", "apattern", "adraft")
	c.mustRun("draft", "configure", "add", "{services}")

	var draftConfig struct {
		Services struct {
			Items []struct {
				ID   string  `json:"Id"`
				Port float64 `json:"port"`
			}
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("draft", "view", "--config", "--format", "json")), &draftConfig))
	require.Len(t, draftConfig.Services.Items, 1)
	item := "{services." + draftConfig.Services.Items[0].ID + "}"
	assert.Equal(t, float64(80), draftConfig.Services.Items[0].Port)

	_, err = c.run("draft", "validate")
	assert.Error(t, err, "sname is required")

	values := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(values, []byte("sname: ignored\nport: 8080\n"), 0o644))
	c.mustRun("draft", "configure", "on", item, "--from", values, "sname=billing")
	c.mustRun("draft", "validate")

	_, err = c.run("draft", "configure", "on", item, "port=notanumber")
	assert.Error(t, err)
	_, err = c.run("draft", "configure", "on", item)
	assert.Error(t, err, "no values given")

	c.mustRun("draft", "run", "generate", "--on", item)
	data, err := os.ReadFile(filepath.Join(c.target, "billing.txt"))
	require.NoError(t, err)
	assert.Equal(t, "service billing on 8080", string(data))

	c.mustRun("draft", "configure", "delete", item)
	draftConfig.Services.Items = nil
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("draft", "view", "--config", "--format", "json")), &draftConfig))
	assert.Empty(t, draftConfig.Services.Items)
}

func TestUpgradeNeedsForceForBreakingChanges(t *testing.T) {
	c := newCLI(t)
	c.mustRun("pattern", "create", "apattern")
	c.mustRun("pattern", "add-attribute", "owner", "--default", "team")
	c.mustRun("pattern", "build")
	c.mustRun("toolkit", "install", filepath.Join(c.home, "export", "apattern_0.0.1.toolkit"))
	c.mustRun("draft", "new", "apattern", "adraft")

	c.mustRun("pattern", "delete-attribute", "owner")
	c.mustRun("pattern", "build")
	c.mustRun("toolkit", "install", filepath.Join(c.home, "export", "apattern_0.1.0.toolkit"))

	_, err := c.run("draft", "configure", "on", "", "owner=x")
	assert.Error(t, err)

	_, err = c.run("draft", "upgrade")
	assert.Error(t, err)
	c.mustRun("draft", "upgrade", "--force")

	out := c.mustRun("draft", "list")
	assert.Contains(t, out, "0.1.0")
}
