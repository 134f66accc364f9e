package persist

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID       string
	Name     string
	Size     int
	Enabled  bool
	Created  time.Time
	Tags     []string
	Children []*widget
	Blob     []byte
}

func (w *widget) Dehydrate() Properties {
	props := NewProperties()
	props.Add("Id", w.ID)
	props.Add("Name", w.Name)
	props.Add("Size", w.Size)
	props.Add("Enabled", w.Enabled)
	props.Add("Created", w.Created)
	props.Add("Tags", w.Tags)
	props.Add("Blob", w.Blob)
	children := make([]Properties, 0, len(w.Children))
	for _, c := range w.Children {
		children = append(children, c.Dehydrate())
	}
	props.Add("Children", children)
	return props
}

func rehydrateWidget(props Properties, f *Factory) (interface{}, error) {
	w := &widget{
		ID:      props.String("Id"),
		Name:    props.String("Name"),
		Size:    props.Int("Size"),
		Enabled: props.Bool("Enabled"),
		Created: props.Time("Created"),
		Tags:    props.Strings("Tags"),
		Blob:    props.Bytes("Blob"),
	}
	for _, child := range props.Objects("Children") {
		c, err := Rehydrate[*widget](f, "Widget", child)
		if err != nil {
			return nil, err
		}
		w.Children = append(w.Children, c)
	}
	return w, nil
}

func newWidgetFactory() *Factory {
	f := NewFactory()
	f.Register("Widget", rehydrateWidget)
	return f
}

func TestPropertiesAddReplacesAndSkipsNil(t *testing.T) {
	props := NewProperties()
	props.Add("a", "1")
	props.Add("b", nil)
	props.Add("c", []string(nil))
	props.Add("a", "2")

	assert.Equal(t, []string{"a"}, props.Names())
	assert.Equal(t, "2", props.String("a"))
	assert.False(t, props.Has("b"))
}

func TestMarshalPreservesOrderAndIndents(t *testing.T) {
	props := NewProperties()
	props.Add("Zeta", "z")
	props.Add("Alpha", "a")
	props.Add("Nested", Properties{{Name: "Inner", Value: 1}})

	data, err := json.MarshalIndent(props, "", "  ")
	require.NoError(t, err)

	text := string(data)
	assert.Less(t, strings.Index(text, "Zeta"), strings.Index(text, "Alpha"))
	assert.Contains(t, text, "\n  \"Alpha\": \"a\"")
	assert.NotContains(t, text, "null")
}

func TestRoundTripThroughFactory(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	original := &widget{
		ID:      "w1",
		Name:    "root",
		Size:    42,
		Enabled: true,
		Created: created,
		Tags:    []string{"x", "y"},
		Blob:    []byte{0x00, 0x01, 0xff},
		Children: []*widget{
			{ID: "w2", Name: "child", Size: 1},
		},
	}

	f := newWidgetFactory()
	clone, err := Clone[*widget](f, "Widget", original)
	require.NoError(t, err)

	assert.Equal(t, original.ID, clone.ID)
	assert.Equal(t, original.Size, clone.Size)
	assert.True(t, clone.Enabled)
	assert.True(t, created.Equal(clone.Created))
	assert.Equal(t, original.Tags, clone.Tags)
	assert.Equal(t, original.Blob, clone.Blob)
	require.Len(t, clone.Children, 1)
	assert.Equal(t, "child", clone.Children[0].Name)
	assert.NotSame(t, original.Children[0], clone.Children[0])
}

func TestUnmarshalKeepsPropertyOrder(t *testing.T) {
	props, err := Decode([]byte(`{"b": 1, "a": {"y": true, "x": null}, "c": [1, "two"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, props.Names())
	nested, ok := props.Object("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y"}, nested.Names())
	assert.Equal(t, 1, props.Int("b"))
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestRehydrateUnknownType(t *testing.T) {
	f := NewFactory()
	_, err := f.Rehydrate("Missing", NewProperties())
	assert.Error(t, err)
}

func TestMarshalYAMLIsOrdered(t *testing.T) {
	w := &widget{ID: "w1", Name: "root", Size: 3}
	data, err := MarshalYAML(w)
	require.NoError(t, err)

	text := string(data)
	assert.Less(t, strings.Index(text, "Id:"), strings.Index(text, "Name:"))
	assert.Contains(t, text, "Size: 3")
}
