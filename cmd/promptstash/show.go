package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/promptstash/promptstash/pkg/picker"
	"github.com/promptstash/promptstash/pkg/presenter"
)

type ShowConfig struct {
	Raw bool
}

func NewShowConfig() *ShowConfig {
	return &ShowConfig{
		Raw: false,
	}
}

var showCmd = &cobra.Command{
	Use:   "show [resource]",
	Short: "Display a document read-only",
	Long: `Display an installed document. The resource may be given as a root-relative
path (agents/code-reviewer.md) or a promptstash:/ URI; without an argument an
interactive pick list is shown.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getShowConfigFromFlags(cmd)
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		if err := runShow(cmd, arg, config); err != nil {
			if errors.Is(err, picker.ErrNoSelection) {
				return
			}
			presenter.Error(err, "Failed to show resource")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewShowConfig()
	showCmd.Flags().Bool("raw", defaults.Raw, "Print the raw markdown without rendering")
	rootCmd.AddCommand(showCmd)
}

func getShowConfigFromFlags(cmd *cobra.Command) *ShowConfig {
	config := NewShowConfig()
	if raw, err := cmd.Flags().GetBool("raw"); err == nil {
		config.Raw = raw
	}
	return config
}

func runShow(cmd *cobra.Command, arg string, config *ShowConfig) error {
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

	if config.Raw || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(string(content))
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Rendering is cosmetic; fall back to the raw document.
		fmt.Print(string(content))
		return nil
	}

	rendered, err := renderer.Render(string(content))
	if err != nil {
		fmt.Print(string(content))
		return nil
	}
	fmt.Print(rendered)

	return nil
}
