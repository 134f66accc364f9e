package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/toolkit"
)

func newTestPattern(t *testing.T) *pattern.PatternDefinition {
	t.Helper()
	p, err := pattern.NewPattern("apattern")
	require.NoError(t, err)
	_, err = p.AddAttribute("aname", pattern.DataTypeString, true, "World", []string{"World", "Earth"})
	require.NoError(t, err)
	services, err := p.AddElement("services", pattern.ElementOptions{Cardinality: pattern.CardinalityZeroOrMany, AutoCreate: true})
	require.NoError(t, err)
	_, err = services.AddAttribute("port", pattern.DataTypeInt, false, "", nil)
	require.NoError(t, err)
	_, err = p.AddCliCommand("announce", "echo", "hello")
	require.NoError(t, err)
	_, err = p.AddCommandLaunchPoint("everything", []string{"announce"})
	require.NoError(t, err)
	return p
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatTable, false)
	printer.Success("done")
	printer.Warning("careful")
	printer.Info("note")
	printer.Error("failed")

	out := buf.String()
	for _, expected := range []string{"✓ done", "⚠ careful", "ℹ note", "✗ failed"} {
		assert.Contains(t, out, expected)
	}

	buf.Reset()
	quiet := NewPrinterWithWriter(&buf, FormatTable, true)
	quiet.Success("done")
	quiet.Error("failed")
	assert.NotContains(t, buf.String(), "done")
	assert.Contains(t, buf.String(), "failed")
}

func TestPrintPatternTree(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatTable, false)
	require.NoError(t, printer.PrintPattern(newTestPattern(t)))

	out := buf.String()
	assert.Contains(t, out, "apattern")
	assert.Contains(t, out, "aname")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "choices: World|Earth")
	assert.Contains(t, out, "services")
	assert.Contains(t, out, "collection")
	assert.Contains(t, out, "launch point: announce")
}

func TestPrintPatternJSON(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatJSON, false)
	p := newTestPattern(t)
	require.NoError(t, printer.PrintPattern(p))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, p.ID, decoded["Id"])
	assert.Equal(t, "apattern", decoded["Name"])
}

func TestPrintDraftAndConfiguration(t *testing.T) {
	p := newTestPattern(t)
	d, err := draft.NewDraft("adraft", &toolkit.ToolkitDefinition{ID: p.ID, Version: "0.1.0", RuntimeVersion: "1.0.0", Pattern: p})
	require.NoError(t, err)
	item, err := d.Model.Property("services").MaterialiseCollectionItem()
	require.NoError(t, err)
	require.NoError(t, item.SetProperties(map[string]string{"port": "8080"}))

	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatTable, false)
	require.NoError(t, printer.PrintDraft(d))
	out := buf.String()
	assert.Contains(t, out, "Draft: adraft (toolkit apattern 0.1.0)")
	assert.Contains(t, out, "aname = World")
	assert.Contains(t, out, "(1 items)")
	assert.Contains(t, out, "port = 8080")

	buf.Reset()
	printer = NewPrinterWithWriter(&buf, FormatYAML, false)
	require.NoError(t, printer.PrintConfiguration(d.Model))
	var config map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &config))
	assert.Equal(t, "World", config["aname"])
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatTable, false)
	require.NoError(t, printer.PrintSummaries("pattern", nil, ""))
	assert.Contains(t, buf.String(), "No patterns found")

	buf.Reset()
	summaries := []storage.EntitySummary{
		{ID: "1", Name: "first", Version: "0.1.0", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)},
		{ID: "2", Name: "second", Version: "1.0.0"},
	}
	require.NoError(t, printer.PrintSummaries("pattern", summaries, "2"))
	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "2024-01-02 03:04")
	assert.Regexp(t, `\*\s+second`, out)
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinterWithWriter(&buf, FormatTable, false)
	require.NoError(t, printer.PrintValidation(nil))
	assert.Contains(t, buf.String(), "The draft is valid")

	buf.Reset()
	require.NoError(t, printer.PrintValidation([]draft.ValidationResult{{Path: "{apattern}", Message: "the element 'x' is required"}}))
	assert.Contains(t, buf.String(), "{apattern}: the element 'x' is required")
}
