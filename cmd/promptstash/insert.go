package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/promptstash/promptstash/pkg/picker"
	"github.com/promptstash/promptstash/pkg/presenter"
)

type InsertConfig struct {
	Into string
	Line int
}

func NewInsertConfig() *InsertConfig {
	return &InsertConfig{
		Into: "",
		Line: 0,
	}
}

var insertCmd = &cobra.Command{
	Use:   "insert [resource]",
	Short: "Insert a document's content into a file",
	Long: `Insert the full text of an installed document verbatim into a target file.
The target is given with --into; --line positions the insertion (1-based),
defaulting to the end of the file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getInsertConfigFromFlags(cmd)
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		if err := runInsert(cmd, arg, config); err != nil {
			if errors.Is(err, picker.ErrNoSelection) {
				return
			}
			presenter.Error(err, "Failed to insert resource")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewInsertConfig()
	insertCmd.Flags().String("into", defaults.Into, "Target file to insert into")
	insertCmd.Flags().Int("line", defaults.Line, "1-based line to insert at (0 appends at the end)")
	rootCmd.AddCommand(insertCmd)
}

func getInsertConfigFromFlags(cmd *cobra.Command) *InsertConfig {
	config := NewInsertConfig()
	if into, err := cmd.Flags().GetString("into"); err == nil {
		config.Into = into
	}
	if line, err := cmd.Flags().GetInt("line"); err == nil {
		config.Line = line
	}
	return config
}

func runInsert(cmd *cobra.Command, arg string, config *InsertConfig) error {
	// Precondition failures abort cleanly with a warning; nothing has been
	// written at this point.
	if config.Into == "" {
		presenter.Warning("No target file specified; use --into <file>")
		return nil
	}

	target, err := os.ReadFile(config.Into)
	if err != nil {
		if os.IsNotExist(err) {
			presenter.Warning(fmt.Sprintf("Target file %s does not exist", config.Into))
			return nil
		}
		return errors.Wrapf(err, "failed to read target file %s", config.Into)
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

	updated := insertAtLine(target, content, config.Line)

	info, err := os.Stat(config.Into)
	if err != nil {
		return errors.Wrapf(err, "failed to stat target file %s", config.Into)
	}
	if err := os.WriteFile(config.Into, updated, info.Mode()); err != nil {
		return errors.Wrapf(err, "failed to write target file %s", config.Into)
	}

	presenter.Success(fmt.Sprintf("Inserted %s into %s", node.RelPath, config.Into))
	return nil
}

// insertAtLine inserts text verbatim before the given 1-based line of
// target. A line of 0 (or one past the last line) appends; lines beyond the
// end clamp to appending.
func insertAtLine(target, text []byte, line int) []byte {
	if line <= 0 {
		return appendText(target, text)
	}

	lines := strings.SplitAfter(string(target), "\n")
	// SplitAfter leaves a trailing empty element when target ends in a
	// newline; drop it so indexing matches visible lines.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if line > len(lines) {
		return appendText(target, text)
	}

	var b strings.Builder
	for i, l := range lines {
		if i == line-1 {
			b.WriteString(ensureTrailingNewline(string(text)))
		}
		b.WriteString(l)
	}
	return []byte(b.String())
}

func appendText(target, text []byte) []byte {
	out := ensureTrailingNewline(string(target))
	return []byte(out + string(text))
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
