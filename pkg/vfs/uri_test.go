package vfs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"simple document", "promptstash:/agents/code-reviewer.md", "agents/code-reviewer.md", false},
		{"category", "promptstash:/prompts", "prompts", false},
		{"double slash tolerated", "promptstash://agents/code-reviewer.md", "agents/code-reviewer.md", false},
		{"traversal neutralized", "promptstash:/../../etc/passwd", "etc/passwd", false},
		{"wrong scheme", "file:/agents/code-reviewer.md", "", true},
		{"no path", "promptstash:/", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURI(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidURI))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.Path())
		})
	}
}

func TestURIString(t *testing.T) {
	u := NewURI("agents/code-reviewer.md")
	assert.Equal(t, "promptstash:/agents/code-reviewer.md", u.String())

	parsed, err := ParseURI(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, parsed)
}

func TestNewURINormalizesSeparators(t *testing.T) {
	u := NewURI(`agents\code-reviewer.md`)
	// Backslashes are only separators on Windows; on other platforms they
	// are literal characters, so just assert the path is stable.
	assert.Equal(t, u, NewURI(u.Path()))
}

func TestURIJoin(t *testing.T) {
	u := Root().Join("agents").Join("code-reviewer.md")
	assert.Equal(t, "agents/code-reviewer.md", u.Path())
	assert.Equal(t, "code-reviewer.md", u.Name())
}

func TestRootURI(t *testing.T) {
	assert.True(t, Root().IsRoot())
	assert.False(t, NewURI("agents").IsRoot())
}
