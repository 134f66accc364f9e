package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/toolkit"
)

func nextToolkit(t *testing.T, d *DraftDefinition, version string, change func(p *pattern.PatternDefinition)) *toolkit.ToolkitDefinition {
	t.Helper()
	p, err := d.Pattern().Clone()
	require.NoError(t, err)
	change(p)
	return &toolkit.ToolkitDefinition{ID: p.ID, Version: version, RuntimeVersion: "1.0.0", Pattern: p}
}

func messages(result *DraftUpgradeResult, change pattern.VersionChange) []string {
	var found []string
	for _, entry := range result.Log {
		if entry.Change == change {
			found = append(found, entry.Message)
		}
	}
	return found
}

func TestUpgradeSameVersionIsNoOp(t *testing.T) {
	d := newTestDraft(t)
	latest := nextToolkit(t, d, "0.1.0", func(p *pattern.PatternDefinition) {})

	result, err := d.Upgrade(latest)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Empty(t, result.Log)
}

func TestUpgradeRejectsOlderToolkit(t *testing.T) {
	d := newTestDraft(t)
	latest := nextToolkit(t, d, "0.0.9", func(p *pattern.PatternDefinition) {})

	_, err := d.Upgrade(latest)
	assert.True(t, errs.IsCompatibility(err))
	assert.Equal(t, "0.1.0", d.ToolkitVersion())
}

func TestUpgradeRejectsUnrelatedToolkit(t *testing.T) {
	d := newTestDraft(t)
	latest := nextToolkit(t, d, "0.2.0", func(p *pattern.PatternDefinition) {})
	latest.ID = "another"

	result, err := d.Upgrade(latest)
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, "0.1.0", d.ToolkitVersion())
}

func TestUpgradeMigratesValuesAndElements(t *testing.T) {
	d := newTestDraft(t)
	element, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)
	require.NoError(t, element.SetProperties(map[string]string{"anumber": "7"}))
	item, err := d.Model.Property("acollectionname").MaterialiseCollectionItem()
	require.NoError(t, err)
	require.NoError(t, item.SetProperties(map[string]string{"aname": "notanumber"}))

	latest := nextToolkit(t, d, "0.2.0", func(p *pattern.PatternDefinition) {
		renamed := "arenamed"
		_, err := p.UpdateAttribute("aproperty", pattern.AttributeUpdate{Name: &renamed})
		require.NoError(t, err)
		_, err = p.AddAttribute("anewone", pattern.DataTypeBool, false, "true", nil)
		require.NoError(t, err)

		collection := p.FindElement("acollectionname")
		dataType := pattern.DataTypeInt
		_, err = collection.UpdateAttribute("aname", pattern.AttributeUpdate{DataType: &dataType})
		require.NoError(t, err)

		anelement := p.FindElement("anelement")
		require.NoError(t, anelement.DeleteAttribute("anumber"))
		_, err = p.AddElement("added", pattern.ElementOptions{AutoCreate: true})
		require.NoError(t, err)
	})

	result, err := d.Upgrade(latest)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "0.1.0", result.FromVersion)
	assert.Equal(t, "0.2.0", result.ToVersion)
	assert.Equal(t, "0.2.0", d.ToolkitVersion())
	assert.True(t, result.HasBreaking())
	assert.Len(t, messages(result, pattern.Breaking), 2)

	value, ok := d.Model.Value("arenamed")
	assert.True(t, ok, "values follow renamed attributes")
	assert.Equal(t, "adefault", value)
	value, _ = d.Model.Value("anewone")
	assert.Equal(t, true, value)

	_, ok = item.Value("aname")
	assert.False(t, ok, "values invalid for the new type are reset")
	assert.Empty(t, element.Values())

	added := d.Model.Property("added")
	require.NotNil(t, added)
	assert.True(t, added.IsMaterialised)
	assert.Same(t, d.Pattern().FindElement("added"), added.Schema())
	assert.Same(t, d.Pattern().FindElement("acollectionname"), item.Schema())
}

func TestUpgradeResetsCardinalityChanges(t *testing.T) {
	d := newTestDraft(t)
	_, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)

	latest := nextToolkit(t, d, "0.2.0", func(p *pattern.PatternDefinition) {
		cardinality := pattern.CardinalityZeroOrMany
		_, err := p.UpdateElement("anelement", pattern.ElementUpdate{Cardinality: &cardinality})
		require.NoError(t, err)
		require.NoError(t, p.DeleteElement("acollectionname"))
	})

	result, err := d.Upgrade(latest)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Len(t, messages(result, pattern.Breaking), 2)

	container := d.Model.Property("anelement")
	assert.True(t, container.IsContainer())
	assert.True(t, container.IsMaterialised)
	assert.Nil(t, d.Model.Property("acollectionname"))
}
