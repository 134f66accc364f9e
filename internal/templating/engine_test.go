package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
)

func TestTransform(t *testing.T) {
	root := map[string]interface{}{"Name": "root", "Count": 3}
	child := map[string]interface{}{"Name": "child", "Parent": root}
	root["child"] = child
	root["Items"] = []interface{}{
		map[string]interface{}{"Name": "first"},
		map[string]interface{}{"Name": "second"},
	}

	tests := []struct {
		name     string
		template string
		data     interface{}
		want     string
	}{
		{"plain text", "no actions", root, "no actions"},
		{"bare reference", "Hello {{Name}}", root, "Hello root"},
		{"dotted reference", "{{.Name}}", root, "root"},
		{"nested", "{{child.Name}}", root, "child"},
		{"parent", "{{child.Parent.Name}}", root, "root"},
		{"range", "{{range Items}}{{Name}};{{end}}", root, "first;second;"},
		{"condition", `{{if eq Name "root"}}yes{{else}}no{{end}}`, root, "yes"},
		{"string literal untouched", `{{printf "%s-Name" Name}}`, root, "root-Name"},
		{"funcs", "{{upper Name}} {{pascal \"a_long name\"}} {{snake \"SomeValue\"}}", root, "ROOT ALongName some_value"},
		{"pipeline", "{{Name | upper}}", root, "ROOT"},
		{"variable", "{{$n := Name}}{{$n}}", root, "root"},
		{"trim markers", "a {{- Name -}} b", root, "arootb"},
	}
	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Transform(tt.name, tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformSyntaxError(t *testing.T) {
	_, err := NewEngine().Transform("atemplate", "{{if Name}}", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "atemplate")
	assert.Contains(t, err.Error(), "syntax error")
}

func TestTransformExecutionError(t *testing.T) {
	_, err := NewEngine().Transform("atemplate", "{{index Items 5}}", map[string]interface{}{"Items": []interface{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be transformed")
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, []string{"some", "Value", "HTTP", "Server"}, splitWords("someValue_HTTPServer"))
	assert.Equal(t, "someValueHttpServer", NewEngine().funcs["camel"].(func(string) string)("some value HTTP server"))
	assert.Equal(t, "a-b-c", joinWords("A B_c", "-"))
}

func TestTemplateWordsCannotNameMembers(t *testing.T) {
	for name := range NewEngine().funcs {
		assert.True(t, pattern.IsTemplateWord(name), name)
	}
	for name := range keywords {
		assert.True(t, pattern.IsTemplateWord(name), name)
	}
}
