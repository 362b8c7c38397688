// Package vfs provides the read-only virtual filesystem over the installed
// resource tree. Resources are addressed by "promptstash:/<path>" URIs; the
// provider translates those to real paths under the resource root and
// delegates to the backing filesystem. It is the single sanctioned read path
// for installed resources: every mutation attempt is rejected, and path
// translation refuses to resolve outside the root.
package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when a URI does not resolve to an installed resource.
	ErrNotFound = errors.New("file not found")
	// ErrReadOnly is returned for every mutation attempted through the provider.
	ErrReadOnly = errors.New("resources are read-only")
)

// FileType distinguishes directory entries from files.
type FileType int

const (
	// TypeFile marks a regular document.
	TypeFile FileType = iota
	// TypeDirectory marks a category directory.
	TypeDirectory
)

// FileInfo describes a resolved resource.
type FileInfo struct {
	Name    string
	Type    FileType
	Size    int64
	ModTime time.Time
}

// Entry is a single directory listing entry.
type Entry struct {
	Name string
	Type FileType
}

// Disposable is the handle returned by Watch. Disposing it is always safe.
type Disposable interface {
	Dispose()
}

type noopDisposable struct{}

func (noopDisposable) Dispose() {}

// Root returns the URI of the resource root directory.
func Root() URI {
	return URI{}
}

// Provider serves read-only access to the resource tree rooted at root on
// the backing filesystem.
type Provider struct {
	fsys afero.Fs
	root string
}

// NewProvider creates a provider over the given resource root. The root's
// canonical form is captured once so containment checks survive symlinked
// storage locations.
func NewProvider(fsys afero.Fs, root string) *Provider {
	if canonical, err := canonicalize(fsys, root); err == nil {
		root = canonical
	}
	return &Provider{fsys: fsys, root: root}
}

// canonicalize resolves symlinks when the backing filesystem is the real
// disk. In-memory filesystems have no symlinks to resolve.
func canonicalize(fsys afero.Fs, path string) (string, error) {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return path, nil
	}
	return filepath.EvalSymlinks(path)
}

// Resolve translates a URI into a native path under the resource root. Any
// path that would escape the root fails with ErrNotFound; callers never
// learn whether the escape target exists.
func (p *Provider) Resolve(u URI) (string, error) {
	native := filepath.FromSlash(u.Path())
	full := filepath.Join(p.root, native)

	rel, err := filepath.Rel(p.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrNotFound, "%s", u)
	}

	// Re-check after symlink resolution: a symlink planted inside the tree
	// must not become a tunnel out of it.
	if canonical, err := canonicalize(p.fsys, full); err == nil {
		crel, crelErr := filepath.Rel(p.root, canonical)
		if crelErr != nil || crel == ".." || strings.HasPrefix(crel, ".."+string(filepath.Separator)) {
			return "", errors.Wrapf(ErrNotFound, "%s", u)
		}
		full = canonical
	}

	return full, nil
}

// Stat returns metadata for the resource addressed by u.
func (p *Provider) Stat(u URI) (FileInfo, error) {
	full, err := p.Resolve(u)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := p.fsys.Stat(full)
	if err != nil {
		return FileInfo{}, mapNotFound(err, u)
	}

	return FileInfo{
		Name:    info.Name(),
		Type:    fileTypeOf(info.IsDir()),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadDirectory lists the immediate entries of the directory addressed by u,
// sorted by name.
func (p *Provider) ReadDirectory(u URI) ([]Entry, error) {
	full, err := p.Resolve(u)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(p.fsys, full)
	if err != nil {
		return nil, mapNotFound(err, u)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name: info.Name(),
			Type: fileTypeOf(info.IsDir()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// ReadFile returns the full content of the document addressed by u.
func (p *Provider) ReadFile(u URI) ([]byte, error) {
	full, err := p.Resolve(u)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(p.fsys, full)
	if err != nil {
		return nil, mapNotFound(err, u)
	}

	return data, nil
}

// Watch accepts a watch request and returns an inert disposable. The only
// writer to the resource tree is the installer, which runs before any
// provider is constructed, so there are no live changes to report.
func (p *Provider) Watch(_ URI) Disposable {
	return noopDisposable{}
}

// WriteFile rejects the write: installed resources are read-only.
func (p *Provider) WriteFile(u URI, _ []byte) error {
	return errors.Wrapf(ErrReadOnly, "cannot write %s", u)
}

// CreateDirectory rejects the mutation: installed resources are read-only.
func (p *Provider) CreateDirectory(u URI) error {
	return errors.Wrapf(ErrReadOnly, "cannot create %s", u)
}

// Delete rejects the mutation: installed resources are read-only.
func (p *Provider) Delete(u URI) error {
	return errors.Wrapf(ErrReadOnly, "cannot delete %s", u)
}

// Rename rejects the mutation: installed resources are read-only.
func (p *Provider) Rename(oldURI, _ URI) error {
	return errors.Wrapf(ErrReadOnly, "cannot rename %s", oldURI)
}

func fileTypeOf(isDir bool) FileType {
	if isDir {
		return TypeDirectory
	}
	return TypeFile
}

func mapNotFound(err error, u URI) error {
	if os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrNotFound, "%s", u)
	}
	return errors.Wrapf(err, "failed to access %s", u)
}
