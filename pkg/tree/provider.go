// Package tree projects the installed resource directory into a navigable
// category/document hierarchy. Nodes are derived from disk on demand and
// hold no state beyond their path, so a projection is always consistent with
// whatever is currently installed.
package tree

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/promptstash/promptstash/pkg/vfs"
)

// documentExtension is the recognized document suffix; other files are not
// projected into the tree.
const documentExtension = ".md"

// Kind distinguishes category nodes from document leaves.
type Kind int

const (
	// KindCategory is an expandable directory node.
	KindCategory Kind = iota
	// KindDocument is an openable leaf node.
	KindDocument
)

// ResourceNode is a single entry in the projected tree.
type ResourceNode struct {
	// Label is the display name: frontmatter name for documents when
	// present, otherwise the path segment.
	Label string
	// RelPath is the slash-separated path relative to the resource root.
	RelPath string
	Kind    Kind
	// Description comes from document frontmatter; empty for categories.
	Description string
}

// URI returns the virtual address of the node.
func (n ResourceNode) URI() vfs.URI {
	return vfs.NewURI(n.RelPath)
}

// Provider computes tree projections over the virtual filesystem. Results
// are memoized per parent until Refresh is called; refresh semantics are a
// full rescan, not an incremental diff.
type Provider struct {
	vfs *vfs.Provider

	mu        sync.Mutex
	cache     map[string][]ResourceNode
	listeners []func()
}

// NewProvider creates a tree provider reading through the given virtual
// filesystem.
func NewProvider(v *vfs.Provider) *Provider {
	return &Provider{
		vfs:   v,
		cache: make(map[string][]ResourceNode),
	}
}

// GetChildren returns the immediate children of node. A nil node means the
// resource root, whose children are the top-level categories. An absent
// resource tree (e.g. before the first install completes) yields an empty
// slice, not an error, so callers never break on a cold start.
func (p *Provider) GetChildren(node *ResourceNode) ([]ResourceNode, error) {
	parentPath := ""
	if node != nil {
		if node.Kind != KindCategory {
			return nil, errors.Errorf("%s is not a category", node.RelPath)
		}
		parentPath = node.RelPath
	}

	p.mu.Lock()
	if cached, ok := p.cache[parentPath]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	children, err := p.scan(parentPath)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[parentPath] = children
	p.mu.Unlock()

	return children, nil
}

func (p *Provider) scan(parentPath string) ([]ResourceNode, error) {
	entries, err := p.vfs.ReadDirectory(vfs.NewURI(parentPath))
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return []ResourceNode{}, nil
		}
		return nil, err
	}

	children := make([]ResourceNode, 0, len(entries))
	for _, entry := range entries {
		relPath := path.Join(parentPath, entry.Name)

		switch {
		case entry.Type == vfs.TypeDirectory:
			children = append(children, ResourceNode{
				Label:   entry.Name,
				RelPath: relPath,
				Kind:    KindCategory,
			})
		case strings.HasSuffix(entry.Name, documentExtension):
			children = append(children, p.documentNode(entry.Name, relPath))
		}
	}

	return children, nil
}

func (p *Provider) documentNode(name, relPath string) ResourceNode {
	node := ResourceNode{
		Label:   name,
		RelPath: relPath,
		Kind:    KindDocument,
	}

	if content, err := p.vfs.ReadFile(vfs.NewURI(relPath)); err == nil {
		if md := parseMetadata(content); md.Name != "" {
			node.Label = md.Name
			node.Description = md.Description
		}
	}

	return node
}

// Flatten walks every category and returns all documents sorted
// alphabetically by relative path, suitable for a pick list.
func (p *Provider) Flatten() ([]ResourceNode, error) {
	var documents []ResourceNode

	var walk func(node *ResourceNode) error
	walk = func(node *ResourceNode) error {
		children, err := p.GetChildren(node)
		if err != nil {
			return err
		}
		for i := range children {
			child := children[i]
			switch child.Kind {
			case KindCategory:
				if err := walk(&child); err != nil {
					return err
				}
			case KindDocument:
				documents = append(documents, child)
			}
		}
		return nil
	}

	if err := walk(nil); err != nil {
		return nil, err
	}

	sort.Slice(documents, func(i, j int) bool { return documents[i].RelPath < documents[j].RelPath })

	return documents, nil
}

// Refresh drops every memoized projection and notifies registered listeners.
// The next query re-scans disk.
func (p *Provider) Refresh() {
	p.mu.Lock()
	p.cache = make(map[string][]ResourceNode)
	listeners := make([]func(), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnRefresh registers a change-notification listener invoked on every
// Refresh.
func (p *Provider) OnRefresh(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}
