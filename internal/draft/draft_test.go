package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
	"github.com/n1rna/automate/internal/templating"
	"github.com/n1rna/automate/internal/toolkit"
)

func newTestToolkit(t *testing.T) *toolkit.ToolkitDefinition {
	t.Helper()
	p, err := pattern.NewPattern("apatternname")
	require.NoError(t, err)
	_, err = p.AddAttribute("aproperty", pattern.DataTypeString, false, "adefault", nil)
	require.NoError(t, err)

	element, err := p.AddElement("anelement", pattern.ElementOptions{Cardinality: pattern.CardinalityOne})
	require.NoError(t, err)
	_, err = element.AddAttribute("anumber", pattern.DataTypeInt, true, "", nil)
	require.NoError(t, err)

	collection, err := p.AddElement("acollectionname", pattern.ElementOptions{Cardinality: pattern.CardinalityZeroOrMany, AutoCreate: true})
	require.NoError(t, err)
	_, err = collection.AddAttribute("aname", pattern.DataTypeString, false, "", nil)
	require.NoError(t, err)
	nested, err := collection.AddElement("anelementname", pattern.ElementOptions{AutoCreate: true})
	require.NoError(t, err)
	_, err = nested.AddAttribute("adate", pattern.DataTypeDateTime, false, "", nil)
	require.NoError(t, err)

	return &toolkit.ToolkitDefinition{ID: p.ID, Version: "0.1.0", RuntimeVersion: "1.0.0", Pattern: p}
}

func newTestDraft(t *testing.T) *DraftDefinition {
	t.Helper()
	d, err := NewDraft("adraft", newTestToolkit(t))
	require.NoError(t, err)
	return d
}

func TestNewDraft(t *testing.T) {
	tk := newTestToolkit(t)
	d, err := NewDraft("adraft", tk)
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.NotSame(t, tk.Pattern, d.Pattern())
	assert.Equal(t, "0.1.0", d.ToolkitVersion())

	root := d.Model
	assert.True(t, root.IsMaterialised)
	assert.NotEmpty(t, root.ID)
	value, ok := root.Value("aproperty")
	assert.True(t, ok)
	assert.Equal(t, "adefault", value)

	require.Len(t, root.Properties(), 2)
	assert.False(t, root.Property("anelement").IsMaterialised)
	container := root.Property("acollectionname")
	assert.True(t, container.IsMaterialised)
	assert.True(t, container.IsContainer())
	assert.Empty(t, container.Items())
	assert.Empty(t, container.Properties())

	_, err = NewDraft("not a name", tk)
	assert.True(t, errs.IsValidation(err))
}

func TestMaterialiseSingularTwiceFails(t *testing.T) {
	d := newTestDraft(t)
	element := d.Model.Property("anelement")

	_, err := element.Materialise()
	require.NoError(t, err)
	assert.NotEmpty(t, element.ID)

	_, err = element.Materialise()
	assert.True(t, errs.IsValidation(err))
}

func TestMaterialiseCollectionItemsHaveDistinctIDs(t *testing.T) {
	d := newTestDraft(t)
	container := d.Model.Property("acollectionname")

	first, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)
	second, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []*DraftItem{first, second}, container.Items())
	assert.True(t, first.IsCollectionItem)
	assert.Same(t, d.Model, first.Parent())
	assert.True(t, first.Property("anelementname").IsMaterialised)
	assert.NotEqual(t, first.Property("anelementname").ID, second.Property("anelementname").ID)
	assert.Equal(t, "{apatternname.acollectionname."+first.ID+".anelementname}", first.Property("anelementname").ConfigurePath())

	_, err = d.Model.Property("anelement").MaterialiseCollectionItem()
	assert.True(t, errs.IsValidation(err))
}

func TestResolve(t *testing.T) {
	d := newTestDraft(t)
	container := d.Model.Property("acollectionname")
	first, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)
	second, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)

	found, err := Resolve(d, "{apatternname.acollectionname."+second.ID+".anelementname}")
	require.NoError(t, err)
	assert.Same(t, second.Property("anelementname"), found)

	found, err = Resolve(d, "{acollectionname."+first.ID+"}")
	require.NoError(t, err)
	assert.Same(t, first, found)

	found, err = Resolve(d, "{apatternname}")
	require.NoError(t, err)
	assert.Same(t, d.Model, found)

	found, err = Resolve(d, "{acollectionname."+first.ID+".anelementname.Parent}")
	require.NoError(t, err)
	assert.Same(t, first, found)

	found, err = first.Resolve("{Parent}")
	require.NoError(t, err)
	assert.Same(t, d.Model, found)

	found, err = first.Resolve("{anelementname}")
	require.NoError(t, err)
	assert.Same(t, first.Property("anelementname"), found)

	found, err = Resolve(d, "{apatternname.anelement}")
	require.NoError(t, err)
	assert.Nil(t, found, "unmaterialised items are not found")
	assert.False(t, d.Model.Property("anelement").IsMaterialised)

	found, err = Resolve(d, "{acollectionname.unknownid}")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = Resolve(d, "apatternname.acollectionname")
	assert.True(t, errs.IsValidation(err))
}

func TestSetProperties(t *testing.T) {
	d := newTestDraft(t)
	element := d.Model.Property("anelement")

	err := element.SetProperties(map[string]string{"anumber": "5"})
	assert.True(t, errs.IsValidation(err), "placeholders cannot be configured")

	_, err = element.Materialise()
	require.NoError(t, err)

	err = element.SetProperties(map[string]string{"anumber": "5", "unknown": "x"})
	assert.True(t, errs.IsValidation(err))
	_, ok := element.Value("anumber")
	assert.False(t, ok, "nothing is assigned when any key fails")

	err = element.SetProperties(map[string]string{"anumber": "five"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anumber")

	require.NoError(t, element.SetProperties(map[string]string{"ANumber": "5"}))
	value, _ := element.Value("anumber")
	assert.Equal(t, 5, value)

	require.NoError(t, d.Model.SetProperties(map[string]string{"aproperty": "changed"}))
	require.NoError(t, d.Model.ResetAllProperties())
	value, _ = d.Model.Value("aproperty")
	assert.Equal(t, "adefault", value)

	err = d.Model.SetProperties(map[string]string{"anelement": "x"})
	assert.True(t, errs.IsValidation(err))
}

func TestValidate(t *testing.T) {
	d := newTestDraft(t)

	results := d.Validate()
	require.Len(t, results, 1)
	assert.Equal(t, "{apatternname}", results[0].Path)
	assert.Contains(t, results[0].Message, "anelement")

	element, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)
	results = d.Validate()
	require.Len(t, results, 1)
	assert.Equal(t, "{apatternname.anelement}", results[0].Path)
	assert.Contains(t, results[0].Message, "anumber")

	require.NoError(t, element.SetProperties(map[string]string{"anumber": "1"}))
	assert.Empty(t, d.Validate())
}

func TestValidateOneOrMany(t *testing.T) {
	p, err := pattern.NewPattern("apattern")
	require.NoError(t, err)
	_, err = p.AddElement("things", pattern.ElementOptions{Cardinality: pattern.CardinalityOneOrMany, AutoCreate: true})
	require.NoError(t, err)
	d, err := NewDraft("adraft", &toolkit.ToolkitDefinition{ID: p.ID, Version: "1.0.0", Pattern: p})
	require.NoError(t, err)

	results := d.Validate()
	require.Len(t, results, 1)
	assert.Equal(t, "{apattern.things}", results[0].Path)

	_, err = d.Model.Property("things").MaterialiseCollectionItem()
	require.NoError(t, err)
	assert.Empty(t, d.Validate())
}

func TestUnMaterialiseAndCollections(t *testing.T) {
	d := newTestDraft(t)
	element, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)
	require.NoError(t, element.SetProperties(map[string]string{"anumber": "3"}))

	require.NoError(t, element.UnMaterialise())
	assert.False(t, element.IsMaterialised)
	assert.Empty(t, element.ID)
	_, ok := element.Value("anumber")
	assert.False(t, ok)

	assert.True(t, errs.IsValidation(d.Model.UnMaterialise()))

	container := d.Model.Property("acollectionname")
	first, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)
	_, err = container.MaterialiseCollectionItem()
	require.NoError(t, err)

	require.NoError(t, container.DeleteCollectionItem(first.ID))
	assert.Len(t, container.Items(), 1)
	assert.True(t, errs.IsNotFound(container.DeleteCollectionItem(first.ID)))

	require.NoError(t, container.ClearCollectionItems())
	assert.Empty(t, container.Items())
	assert.True(t, errs.IsValidation(d.Model.ClearCollectionItems()))
}

func TestConfigurationAndResolveExpression(t *testing.T) {
	d := newTestDraft(t)
	container := d.Model.Property("acollectionname")
	item, err := container.MaterialiseCollectionItem()
	require.NoError(t, err)
	require.NoError(t, item.SetProperties(map[string]string{"aname": "first"}))

	config := d.Model.Configuration(false)
	assert.Equal(t, d.Model.ID, config["Id"])
	assert.Equal(t, "adefault", config["aproperty"])
	assert.NotContains(t, config, "anelement")
	assert.NotContains(t, config, "Parent")
	collection := config["acollectionname"].(map[string]interface{})
	items := collection["Items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].(map[string]interface{})["aname"])

	engine := templating.NewEngine()
	nested := item.Property("anelementname")
	text, err := ResolveExpression(engine, "atest", "{{Parent.aname}} of {{Parent.Parent.aproperty}}", nested)
	require.NoError(t, err)
	assert.Equal(t, "first of adefault", text)

	text, err = ResolveExpression(engine, "atest", "{{anelementname.Parent.aname}}", item)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	text, err = ResolveExpression(engine, "atest", "{{range acollectionname.Items}}{{aname}}{{end}}", d.Model)
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestDraftRoundTrip(t *testing.T) {
	d := newTestDraft(t)
	element, err := d.Model.Property("anelement").Materialise()
	require.NoError(t, err)
	require.NoError(t, element.SetProperties(map[string]string{"anumber": "42"}))
	item, err := d.Model.Property("acollectionname").MaterialiseCollectionItem()
	require.NoError(t, err)
	require.NoError(t, item.Property("anelementname").SetProperties(map[string]string{"adate": "2024-05-06T07:08:09Z"}))

	data, err := persist.Marshal(d)
	require.NoError(t, err)
	loaded, err := persist.Unmarshal[*DraftDefinition](NewFactory(), TypeDraftDefinition, data)
	require.NoError(t, err)

	assert.Equal(t, d.Dehydrate(), loaded.Dehydrate())
	loadedItem := loaded.FindItemByID(item.ID)
	require.NotNil(t, loadedItem)
	assert.Same(t, loaded.Model, loadedItem.Parent())
	value, _ := loaded.Model.Property("anelement").Value("anumber")
	assert.Equal(t, 42, value)
	date, _ := loadedItem.Property("anelementname").Value("adate")
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), date)
}

func TestVerifyDraftCompatibility(t *testing.T) {
	assert.NoError(t, VerifyDraftCompatibility("1.2.0", "1.2.0"))

	err := VerifyDraftCompatibility("1.3.0", "1.2.0")
	assert.True(t, errs.IsCompatibility(err))
	assert.Contains(t, err.Error(), "install the newer toolkit")

	err = VerifyDraftCompatibility("1.1.0", "1.2.0")
	assert.True(t, errs.IsCompatibility(err))
	assert.Contains(t, err.Error(), "upgrade the draft")
}
