// Command promptstash distributes bundled reference documents (agents,
// prompts, instructions, skills) into a per-user resource directory and
// provides read-only access to them: listing, viewing, inserting into files,
// and exporting into project discovery directories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptstash/promptstash/pkg/logger"
	"github.com/promptstash/promptstash/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("PROMPTSTASH")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.promptstash")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	viper.SetDefault("external.enabled", false)
	viper.SetDefault("external.categories", []string{"instructions/**", "prompts/**"})
}

var rootCmd = &cobra.Command{
	Use:   "promptstash",
	Short: "Distribute and browse bundled reference documents",
	Long: `promptstash ships a curated tree of reference documents (agents, prompts,
instructions, skills) and installs it into ~/.promptstash on first use.
Installed documents are read-only; use the subcommands to list, view,
insert, or export them.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if level := viper.GetString("log_level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				presenter.Warning(fmt.Sprintf("Invalid log level %q, using default", level))
			}
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
