// Package bundle exposes the reference documents compiled into the binary.
// The tree is organized as category directories (agents, prompts,
// instructions, skills) containing markdown documents. The installer
// distributes this tree into the per-user global resource directory; nothing
// else in the application reads the embedded copy directly.
package bundle

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed resources
var embedded embed.FS

// rootDir is the directory prefix the go:embed directive introduces.
const rootDir = "resources"

// FS returns the bundled resource tree rooted at the category level.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, rootDir)
	if err != nil {
		// The embedded tree is compiled in; failing to root it means the
		// build itself is broken.
		panic("bundle: embedded resource tree is missing: " + err.Error())
	}
	return sub
}

// Categories returns the sorted top-level category names of the bundled tree.
func Categories() ([]string, error) {
	entries, err := fs.ReadDir(FS(), ".")
	if err != nil {
		return nil, err
	}

	var categories []string
	for _, entry := range entries {
		if entry.IsDir() {
			categories = append(categories, entry.Name())
		}
	}
	sort.Strings(categories)

	return categories, nil
}
