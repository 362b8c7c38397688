package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptstash/promptstash/pkg/picker"
	"github.com/promptstash/promptstash/pkg/presenter"
)

// discoveryDirName is the project-local directory external tools scan for
// exported resources. Exports mirror the resource's relative path under it.
const discoveryDirName = ".promptstash"

type ExportConfig struct {
	Project string
	Trust   bool
}

func NewExportConfig() *ExportConfig {
	return &ExportConfig{
		Project: ".",
		Trust:   false,
	}
}

var exportCmd = &cobra.Command{
	Use:   "export [resource]",
	Short: "Export a document into a project's discovery directory",
	Long: `Copy an installed document into <project>/.promptstash/, mirroring its
relative path. The project must be trusted: either listed under
trust.projects in the configuration, or explicitly allowed with --trust.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getExportConfigFromFlags(cmd)
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		if err := runExport(cmd, arg, config); err != nil {
			if errors.Is(err, picker.ErrNoSelection) {
				return
			}
			presenter.Error(err, "Failed to export resource")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewExportConfig()
	exportCmd.Flags().String("project", defaults.Project, "Project directory to export into")
	exportCmd.Flags().Bool("trust", defaults.Trust, "Trust the project for this invocation")
	rootCmd.AddCommand(exportCmd)
}

func getExportConfigFromFlags(cmd *cobra.Command) *ExportConfig {
	config := NewExportConfig()
	if project, err := cmd.Flags().GetString("project"); err == nil {
		config.Project = project
	}
	if trust, err := cmd.Flags().GetBool("trust"); err == nil {
		config.Trust = trust
	}
	return config
}

// projectTrusted reports whether the project directory may receive exports.
func projectTrusted(project string, override bool) bool {
	if override {
		return true
	}

	abs, err := filepath.Abs(project)
	if err != nil {
		return false
	}

	for _, trusted := range viper.GetStringSlice("trust.projects") {
		trustedAbs, err := filepath.Abs(trusted)
		if err != nil {
			continue
		}
		if trustedAbs == abs {
			return true
		}
	}
	return false
}

func runExport(cmd *cobra.Command, arg string, config *ExportConfig) error {
	info, err := os.Stat(config.Project)
	if err != nil || !info.IsDir() {
		presenter.Warning(fmt.Sprintf("Project directory %s does not exist", config.Project))
		return nil
	}

	if !projectTrusted(config.Project, config.Trust) {
		presenter.Warning(fmt.Sprintf("Project %s is not trusted; add it to trust.projects or pass --trust", config.Project))
		return nil
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	node, err := a.resolveResource(arg)
	if err != nil {
		return err
	}

	content, err := a.vfs.ReadFile(node.URI())
	if err != nil {
		return err
	}

	dest := filepath.Join(config.Project, discoveryDirName, filepath.FromSlash(node.RelPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", dest)
	}

	presenter.Success(fmt.Sprintf("Exported %s to %s", node.RelPath, dest))
	return nil
}
