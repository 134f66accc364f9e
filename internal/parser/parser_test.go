package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n1rna/automate/internal/pattern"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDotEnvParser(t *testing.T) {
	values, err := NewDotEnvParser().Parse(strings.NewReader(`
# a comment
NAME=billing
export PORT = 8080
QUOTED="hello world"
SINGLE='x=y'
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"NAME":   "billing",
		"PORT":   "8080",
		"QUOTED": "hello world",
		"SINGLE": "x=y",
	}, values)

	_, err = NewDotEnvParser().Parse(strings.NewReader("novalue"))
	assert.ErrorContains(t, err, "line 1")
	_, err = NewDotEnvParser().Parse(strings.NewReader("=value"))
	assert.ErrorContains(t, err, "empty variable name")
}

func TestParseValuesFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "values.yaml", "name: billing\nport: 8080\nratio: 0.5\nenabled: true\n"},
		{"json", "values.json", `{"name": "billing", "port": 8080, "ratio": 0.5, "enabled": true}`},
		{"dotenv", "values.env", "name=billing\nport=8080\nratio=0.5\nenabled=true\n"},
		{"sniffed json", "values", `{"name": "billing", "port": 8080, "ratio": 0.5, "enabled": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := ParseValuesFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, map[string]string{
				"name":    "billing",
				"port":    "8080",
				"ratio":   "0.5",
				"enabled": "true",
			}, values)
		})
	}
}

func TestParseValuesFileRejectsNestedValues(t *testing.T) {
	_, err := ParseValuesFile(writeFile(t, "values.yaml", "service:\n  name: billing\n"))
	assert.ErrorContains(t, err, "must be a scalar")

	_, err = ParseValuesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAttributeSpec(t *testing.T) {
	spec, err := ParseAttributeSpec("url:string:true:http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, AttributeSpec{
		Name:         "url",
		DataType:     pattern.DataTypeString,
		IsRequired:   true,
		DefaultValue: "http://localhost:8080",
	}, spec)

	spec, err = ParseAttributeSpec("port:int:no")
	require.NoError(t, err)
	assert.Equal(t, pattern.DataTypeInt, spec.DataType)
	assert.False(t, spec.IsRequired)

	for _, invalid := range []string{"name", ":string:true", "name:colour:true", "name:string:maybe"} {
		_, err := ParseAttributeSpec(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestParseAttributeSpecs(t *testing.T) {
	specs, err := ParseAttributeSpecs([]string{"a:string:true", "b:bool:false:true"})
	require.NoError(t, err)
	require.Len(t, specs, 2)

	_, err = ParseAttributeSpecs([]string{"a:string:true", "A:int:false"})
	assert.ErrorContains(t, err, "duplicate attribute name")
}

func TestApplyAttributeSpec(t *testing.T) {
	p, err := pattern.NewPattern("apattern")
	require.NoError(t, err)
	spec, err := ParseAttributeSpec("port:int:false:80")
	require.NoError(t, err)

	attr, err := spec.Apply(p.Root())
	require.NoError(t, err)
	assert.Equal(t, "port", attr.Name)
	assert.Same(t, attr, p.FindAttribute("port"))
}
