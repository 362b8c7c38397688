package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestInsertWithoutTargetAborts(t *testing.T) {
	err := runInsert(&cobra.Command{}, "prompts/commit-message.md", &InsertConfig{Into: ""})

	assert.NoError(t, err)
}

func TestInsertMissingTargetAborts(t *testing.T) {
	target := filepath.Join(t.TempDir(), "notes.md")

	err := runInsert(&cobra.Command{}, "prompts/commit-message.md", &InsertConfig{Into: target})

	assert.NoError(t, err)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInsertAtLine(t *testing.T) {
	target := []byte("line one\nline two\nline three\n")
	text := []byte("INSERTED\n")

	tests := []struct {
		name string
		line int
		want string
	}{
		{"append with zero", 0, "line one\nline two\nline three\nINSERTED\n"},
		{"insert at first line", 1, "INSERTED\nline one\nline two\nline three\n"},
		{"insert mid file", 2, "line one\nINSERTED\nline two\nline three\n"},
		{"insert before last line", 3, "line one\nline two\nINSERTED\nline three\n"},
		{"line past end appends", 10, "line one\nline two\nline three\nINSERTED\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insertAtLine(target, text, tt.line)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestInsertAtLineEmptyTarget(t *testing.T) {
	got := insertAtLine(nil, []byte("INSERTED\n"), 0)
	assert.Equal(t, "INSERTED\n", string(got))
}

func TestInsertAtLineNoTrailingNewline(t *testing.T) {
	got := insertAtLine([]byte("no newline"), []byte("INSERTED"), 0)
	assert.Equal(t, "no newline\nINSERTED", string(got))
}

func TestInsertTextKeptVerbatim(t *testing.T) {
	text := []byte("---\nname: X\n---\n\n# Doc\n")
	got := insertAtLine([]byte("a\nb\n"), text, 2)
	assert.Equal(t, "a\n---\nname: X\n---\n\n# Doc\nb\n", string(got))
}
