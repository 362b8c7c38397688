// Package copier implements the recursive directory copy primitive used to
// distribute the bundled resource tree. It copies between afero filesystems
// so the bundled go:embed tree, the real disk, and in-memory test
// filesystems are all interchangeable.
package copier

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrSourceNotFound is returned when the copy source directory does not exist.
var ErrSourceNotFound = errors.New("copy source does not exist")

const (
	dirPermissions  fs.FileMode = 0o755
	filePermissions fs.FileMode = 0o644
)

// Copy copies the directory tree rooted at src on srcFs into dst on dstFs,
// creating intermediate directories as needed. An existing destination is
// merged into, not cleared; callers that need exclusive replacement must
// remove the destination first. There is no atomicity across the tree: on
// failure, files already copied in this invocation remain.
func Copy(ctx context.Context, srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	srcInfo, err := srcFs.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrSourceNotFound, "%s", src)
		}
		return errors.Wrapf(err, "failed to stat copy source %s", src)
	}
	if !srcInfo.IsDir() {
		return errors.Errorf("copy source %s is not a directory", src)
	}

	return afero.Walk(srcFs, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, "failed to relativize %s", path)
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			if mkErr := dstFs.MkdirAll(destPath, dirPermissions); mkErr != nil {
				return errors.Wrapf(mkErr, "failed to create directory %s", destPath)
			}
			return nil
		}

		return copyFile(srcFs, path, dstFs, destPath)
	})
}

func copyFile(srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	if err := dstFs.MkdirAll(filepath.Dir(dst), dirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", filepath.Dir(dst))
	}

	srcFile, err := srcFs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer srcFile.Close()

	dstFile, err := dstFs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "failed to copy %s", dst)
	}

	return nil
}
