package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptstash/promptstash/pkg/presenter"
	"github.com/promptstash/promptstash/pkg/tree"
)

type ListConfig struct {
	JSONOutput bool
	TreeOutput bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		JSONOutput: false,
		TreeOutput: false,
	}
}

type listEntry struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed reference documents",
	Long:  `List every installed document with its path, display name, and description.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getListConfigFromFlags(cmd)
		if err := runList(cmd, config); err != nil {
			presenter.Error(err, "Failed to list resources")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().Bool("json", defaults.JSONOutput, "Output as JSON")
	listCmd.Flags().Bool("tree", defaults.TreeOutput, "Output as a category tree")
	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if jsonOut, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOut
	}
	if treeOut, err := cmd.Flags().GetBool("tree"); err == nil {
		config.TreeOutput = treeOut
	}
	return config
}

func runList(cmd *cobra.Command, config *ListConfig) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if config.TreeOutput {
		return printTree(a.tree)
	}

	documents, err := a.tree.Flatten()
	if err != nil {
		return err
	}

	if config.JSONOutput {
		entries := make([]listEntry, 0, len(documents))
		for _, doc := range documents {
			entries = append(entries, listEntry{
				Path:        doc.RelPath,
				Name:        doc.Label,
				Description: doc.Description,
				URI:         doc.URI().String(),
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(documents) == 0 {
		presenter.Info("No resources installed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tDESCRIPTION")
	for _, doc := range documents {
		fmt.Fprintf(w, "%s\t%s\t%s\n", doc.RelPath, doc.Label, doc.Description)
	}
	return w.Flush()
}

func printTree(p *tree.Provider) error {
	categories, err := p.GetChildren(nil)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		presenter.Info("No resources installed")
		return nil
	}

	presenter.Section("Resources")

	var render func(nodes []tree.ResourceNode, indent string) error
	render = func(nodes []tree.ResourceNode, indent string) error {
		for _, node := range nodes {
			if node.Kind == tree.KindCategory {
				fmt.Printf("%s%s/\n", indent, node.Label)
				children, err := p.GetChildren(&node)
				if err != nil {
					return err
				}
				if err := render(children, indent+"  "); err != nil {
					return err
				}
				continue
			}
			fmt.Printf("%s%s\n", indent, node.Label)
		}
		return nil
	}

	return render(categories, "")
}
