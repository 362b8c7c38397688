package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptstash/promptstash/pkg/installer"
	"github.com/promptstash/promptstash/pkg/presenter"
	"github.com/promptstash/promptstash/pkg/version"
)

type SyncConfig struct {
	Force bool
}

func NewSyncConfig() *SyncConfig {
	return &SyncConfig{
		Force: false,
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install or refresh the bundled resources",
	Long: `Ensure the installed resource tree matches the running version. With
--force the version marker is reset first, so the tree is wiped and
recopied even when it is already current.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getSyncConfigFromFlags(cmd)
		if err := runSync(cmd, config); err != nil {
			presenter.Error(err, "Failed to sync resources")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewSyncConfig()
	syncCmd.Flags().Bool("force", defaults.Force, "Reinstall even if the tree is current")
	rootCmd.AddCommand(syncCmd)
}

func getSyncConfigFromFlags(cmd *cobra.Command) *SyncConfig {
	config := NewSyncConfig()
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	return config
}

func runSync(cmd *cobra.Command, config *SyncConfig) error {
	extCfg, err := externalConfigFromViper()
	if err != nil {
		return err
	}

	inst, err := installer.New(installer.WithExternalDiscovery(extCfg))
	if err != nil {
		return err
	}

	if config.Force {
		if err := inst.Reset(); err != nil {
			return err
		}
	}

	result, err := inst.EnsureInstalled(cmd.Context(), version.Version)
	if err != nil {
		return err
	}

	if result.Installed {
		presenter.Success(fmt.Sprintf("Installed resources for version %s at %s", result.Version, inst.ResourcesDir()))
	} else {
		presenter.Info(fmt.Sprintf("Resources already current for version %s", result.Version))
	}
	return nil
}
