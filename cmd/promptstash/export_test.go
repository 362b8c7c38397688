package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestProjectTrusted(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	viper.Set("trust.projects", []string{dir})
	t.Cleanup(func() { viper.Set("trust.projects", nil) })

	assert.True(t, projectTrusted(dir, false))
	assert.False(t, projectTrusted(other, false))

	// --trust overrides the configuration.
	assert.True(t, projectTrusted(other, true))
}

func TestExportMissingProjectAborts(t *testing.T) {
	project := filepath.Join(t.TempDir(), "absent")

	err := runExport(&cobra.Command{}, "prompts/commit-message.md", &ExportConfig{Project: project})

	assert.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(project, discoveryDirName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportUntrustedProjectAborts(t *testing.T) {
	project := t.TempDir()

	viper.Set("trust.projects", nil)

	err := runExport(&cobra.Command{}, "prompts/commit-message.md", &ExportConfig{Project: project})

	assert.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(project, discoveryDirName))
	assert.True(t, os.IsNotExist(statErr))
}
