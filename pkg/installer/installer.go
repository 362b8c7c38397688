// Package installer distributes the bundled resource tree into the per-user
// global resource directory. Installation is version-gated: the tree is only
// wiped and recopied when the persisted marker disagrees with the running
// version (or no tree exists yet), and the marker is written strictly after
// the copy has fully succeeded so a crashed install retries on the next run.
package installer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/promptstash/promptstash/pkg/bundle"
	"github.com/promptstash/promptstash/pkg/copier"
	"github.com/promptstash/promptstash/pkg/logger"
	"github.com/promptstash/promptstash/pkg/state"
)

const (
	// ResourcesSubdir is the name of the resource subtree under the global root.
	ResourcesSubdir = "resources"
	// stateFileName holds the installed-version marker inside the global root.
	stateFileName = "state.json"
	// globalRootName is the per-user directory owned exclusively by promptstash.
	globalRootName = ".promptstash"
)

// ExternalConfig controls the optional secondary copy into a well-known
// directory for discovery by external tools.
type ExternalConfig struct {
	Enabled bool
	// Dir is the discovery directory under the user's home.
	Dir string
	// Categories are doublestar patterns (against slash-separated relative
	// paths) selecting what is worth distributing externally.
	Categories []string
}

// Result summarizes an EnsureInstalled run.
type Result struct {
	// Installed is true when the resource tree was (re)copied, false on the
	// warm-start no-op path.
	Installed bool
	// Version is the version the tree now corresponds to.
	Version string
}

// Installer performs version-gated distribution of the bundled tree.
type Installer struct {
	fsys     afero.Fs
	source   afero.Fs
	srcRoot  string
	root     string
	store    *state.Store
	external ExternalConfig

	// copyTree is the copy primitive; a seam so tests can count invocations.
	copyTree func(ctx context.Context, srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error
}

// Option configures an Installer.
type Option func(*Installer) error

// WithFs sets the destination filesystem (the real disk by default).
func WithFs(fsys afero.Fs) Option {
	return func(i *Installer) error {
		i.fsys = fsys
		return nil
	}
}

// WithGlobalRoot overrides the per-user global resource root.
func WithGlobalRoot(root string) Option {
	return func(i *Installer) error {
		if root == "" {
			return errors.New("global root must not be empty")
		}
		i.root = root
		return nil
	}
}

// WithSource overrides the bundled source tree.
func WithSource(src afero.Fs, root string) Option {
	return func(i *Installer) error {
		i.source = src
		i.srcRoot = root
		return nil
	}
}

// WithExternalDiscovery enables the best-effort secondary copy.
func WithExternalDiscovery(cfg ExternalConfig) Option {
	return func(i *Installer) error {
		i.external = cfg
		return nil
	}
}

// DefaultGlobalRoot returns the per-user directory promptstash owns
// (~/.promptstash).
func DefaultGlobalRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, globalRootName), nil
}

// New creates an installer. Without options it distributes the compiled-in
// bundle to ~/.promptstash on the real disk.
func New(opts ...Option) (*Installer, error) {
	i := &Installer{
		fsys:     afero.NewOsFs(),
		source:   afero.FromIOFS{FS: bundle.FS()},
		srcRoot:  ".",
		copyTree: copier.Copy,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, errors.Wrap(err, "failed to apply installer option")
		}
	}

	if i.root == "" {
		root, err := DefaultGlobalRoot()
		if err != nil {
			return nil, err
		}
		i.root = root
	}
	i.store = state.NewStore(i.fsys, filepath.Join(i.root, stateFileName))

	return i, nil
}

// GlobalRoot returns the directory the installer distributes into.
func (i *Installer) GlobalRoot() string {
	return i.root
}

// ResourcesDir returns the installed resource subtree path.
func (i *Installer) ResourcesDir() string {
	return filepath.Join(i.root, ResourcesSubdir)
}

// Reset clears the version marker so the next EnsureInstalled reinstalls.
func (i *Installer) Reset() error {
	return i.store.Reset()
}

// EnsureInstalled makes the installed tree correspond to runningVersion.
// It is idempotent for a fixed version: the warm-start path performs no
// filesystem writes.
func (i *Installer) EnsureInstalled(ctx context.Context, runningVersion string) (*Result, error) {
	log := logger.G(ctx).WithField("version", runningVersion)

	stale, err := i.store.Stale(runningVersion)
	if err != nil {
		return nil, err
	}

	resourcesDir := i.ResourcesDir()
	installed, err := afero.DirExists(i.fsys, resourcesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check %s", resourcesDir)
	}

	if !stale && installed {
		log.Debug("resources up to date")
		return &Result{Installed: false, Version: runningVersion}, nil
	}

	// The installed tree must always correspond wholly to one version, so a
	// stale tree is removed before the copy rather than merged over.
	if installed {
		if err := i.fsys.RemoveAll(resourcesDir); err != nil {
			return nil, errors.Wrapf(err, "failed to remove stale resources at %s", resourcesDir)
		}
	}

	if err := i.fsys.MkdirAll(i.root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create global root %s", i.root)
	}

	if err := i.copyTree(ctx, i.source, i.srcRoot, i.fsys, resourcesDir); err != nil {
		// Marker deliberately left unchanged: the next run retries.
		return nil, errors.Wrap(err, "failed to copy bundled resources")
	}

	if err := i.store.RecordInstalled(runningVersion); err != nil {
		return nil, err
	}

	log.Info("installed bundled resources")

	// Secondary distribution is best effort and never fails the install.
	if i.external.Enabled {
		if err := i.copyExternal(ctx, resourcesDir); err != nil {
			log.WithError(err).Warn("external discovery copy failed")
		}
	}

	return &Result{Installed: true, Version: runningVersion}, nil
}

// copyExternal copies the configured category subtrees into the external
// discovery directory, collecting per-file failures instead of aborting.
func (i *Installer) copyExternal(ctx context.Context, resourcesDir string) error {
	if i.external.Dir == "" {
		return errors.New("external discovery enabled but no directory configured")
	}

	var merr *multierror.Error

	walkErr := afero.Walk(i.fsys, resourcesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			merr = multierror.Append(merr, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, err := filepath.Rel(resourcesDir, path)
		if err != nil {
			merr = multierror.Append(merr, err)
			return nil
		}

		if !i.matchesExternalCategory(filepath.ToSlash(rel)) {
			return nil
		}

		dest := filepath.Join(i.external.Dir, rel)
		if err := copyExternalFile(i.fsys, path, dest); err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "failed to distribute %s", rel))
		}
		return nil
	})
	if walkErr != nil {
		merr = multierror.Append(merr, walkErr)
	}

	return merr.ErrorOrNil()
}

func (i *Installer) matchesExternalCategory(relSlashPath string) bool {
	if len(i.external.Categories) == 0 {
		return true
	}
	for _, pattern := range i.external.Categories {
		if ok, err := doublestar.Match(pattern, relSlashPath); err == nil && ok {
			return true
		}
	}
	return false
}

func copyExternalFile(fsys afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, dst, data, 0o644)
}
