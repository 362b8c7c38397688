package tree

import (
	"bytes"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// docMetadata is the YAML frontmatter carried by bundled documents.
type docMetadata struct {
	Name        string
	Description string
}

// parseMetadata extracts the frontmatter of a document. Documents without
// frontmatter (or with unparseable content) yield empty metadata; the caller
// falls back to filename-derived labels.
func parseMetadata(content []byte) docMetadata {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return docMetadata{}
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return docMetadata{}
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	return docMetadata{Name: name, Description: description}
}
