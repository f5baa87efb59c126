package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobFilter_EmptyMatchesAll(t *testing.T) {
	f, err := NewGlobFilter(nil)
	require.NoError(t, err)

	assert.True(t, f.Match("anything"))
	assert.True(t, f.Match(""))
}

func TestGlobFilter_Patterns(t *testing.T) {
	f, err := NewGlobFilter([]string{"robot/*", "goal"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		match bool
	}{
		{"robot/arm", true},
		{"robot/base", true},
		{"goal", true},
		{"goals", false},
		{"debug/grid", false},
		{"robot", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.match, f.Match(tt.name), "name %q", tt.name)
	}
}

func TestGlobFilter_InvalidPattern(t *testing.T) {
	_, err := NewGlobFilter([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestGlobFilter_Wildcard(t *testing.T) {
	f, err := NewGlobFilter([]string{"*"})
	require.NoError(t, err)

	assert.True(t, f.Match("robot/arm"))
	assert.True(t, f.Match("goal"))
}
