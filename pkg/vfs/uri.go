package vfs

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Scheme is the URI scheme under which installed resources are addressed.
const Scheme = "promptstash"

// ErrInvalidURI is returned when a raw string cannot be parsed as a resource URI.
var ErrInvalidURI = errors.New("invalid resource URI")

// URI addresses a resource relative to the installed resource root. The
// logical path always uses forward slashes, regardless of host platform.
type URI struct {
	rel string
}

// NewURI builds a URI from a slash-separated path relative to the resource
// root. Native separators are normalized to forward slashes.
func NewURI(rel string) URI {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return URI{rel: rel}
}

// ParseURI parses a raw string of the form "promptstash:/<relative-path>".
func ParseURI(raw string) (URI, error) {
	rest, ok := strings.CutPrefix(raw, Scheme+":")
	if !ok {
		return URI{}, errors.Wrapf(ErrInvalidURI, "%q does not use the %s scheme", raw, Scheme)
	}

	rest = strings.TrimPrefix(rest, "//")
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return URI{}, errors.Wrapf(ErrInvalidURI, "%q has no resource path", raw)
	}

	return NewURI(rest), nil
}

// Path returns the slash-separated path relative to the resource root.
func (u URI) Path() string {
	return u.rel
}

// Name returns the final path segment.
func (u URI) Name() string {
	return path.Base(u.rel)
}

// Join returns a URI addressing the named child of u.
func (u URI) Join(name string) URI {
	return NewURI(path.Join(u.rel, name))
}

// IsRoot reports whether the URI addresses the resource root itself.
func (u URI) IsRoot() bool {
	return u.rel == "" || u.rel == "."
}

// String renders the URI in its canonical "promptstash:/<path>" form.
func (u URI) String() string {
	return Scheme + ":/" + u.rel
}
