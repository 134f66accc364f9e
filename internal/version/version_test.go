package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3}},
		{input: "v0.1.0", want: Version{Minor: 1}},
		{input: "0.1.0-preview", want: Version{Minor: 1, Prerelease: "preview"}},
		{input: "2.0.0+build.5", want: Version{Major: 2}},
		{input: "", wantErr: true},
		{input: "1.2", wantErr: true},
		{input: "1", wantErr: true},
		{input: "one.two.three", wantErr: true},
		{input: "01.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("1.0.0", "v1.0.0"))
	assert.Equal(t, -1, Compare("0.1.0", "0.2.0"))
	assert.Equal(t, 1, Compare("1.0.0", "1.0.0-preview"))
	assert.Equal(t, 1, Compare("0.10.0", "0.9.0"))
}

func TestBumps(t *testing.T) {
	v := MustParse("0.3.7-beta")
	assert.Equal(t, "0.4.0", v.NextMinor().String())
	assert.Equal(t, "0.3.8", v.NextPatch().String())
	assert.Equal(t, "0.3.7", v.WithoutPrerelease().String())
	assert.True(t, v.IsPrerelease())
}
