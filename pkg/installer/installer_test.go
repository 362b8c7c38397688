package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptstash/promptstash/pkg/copier"
)

func newBundleFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for rel, content := range files {
		full := filepath.Join("bundle", filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, afero.WriteFile(fsys, full, []byte(content), 0o644))
	}
	return fsys
}

func defaultFiles() map[string]string {
	return map[string]string{
		"alpha/doc1.md": "alpha one",
		"beta/doc2.md":  "beta two",
		"beta/doc3.md":  "beta three",
	}
}

func newTestInstaller(t *testing.T, fsys afero.Fs, source afero.Fs, opts ...Option) *Installer {
	t.Helper()
	opts = append([]Option{
		WithFs(fsys),
		WithGlobalRoot(filepath.Join("home", ".promptstash")),
		WithSource(source, "bundle"),
	}, opts...)
	inst, err := New(opts...)
	require.NoError(t, err)
	return inst
}

func readInstalled(t *testing.T, fsys afero.Fs, inst *Installer, rel string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, filepath.Join(inst.ResourcesDir(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestEnsureInstalledRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()))

	result, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, result.Installed)
	assert.Equal(t, "1.0.0", result.Version)

	for rel, content := range defaultFiles() {
		assert.Equal(t, content, readInstalled(t, fsys, inst, rel))
	}
}

func TestEnsureInstalledIdempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()))

	var copies int
	realCopy := inst.copyTree
	inst.copyTree = func(ctx context.Context, srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
		copies++
		return realCopy(ctx, srcFs, src, dstFs, dst)
	}

	first, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, first.Installed)

	second, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.False(t, second.Installed)

	assert.Equal(t, 1, copies, "warm start must not invoke the copy primitive")
}

func TestEnsureInstalledReinstallsOnVersionChange(t *testing.T) {
	fsys := afero.NewMemMapFs()
	source := newBundleFs(t, defaultFiles())
	inst := newTestInstaller(t, fsys, source)

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)

	// The new bundle no longer ships beta/doc3.md.
	require.NoError(t, source.Remove(filepath.Join("bundle", "beta", "doc3.md")))

	result, err := inst.EnsureInstalled(context.Background(), "1.1.0")
	require.NoError(t, err)
	assert.True(t, result.Installed)

	// Wipe-and-recopy, not a merge: the dropped document is gone.
	exists, err := afero.Exists(fsys, filepath.Join(inst.ResourcesDir(), "beta", "doc3.md"))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, "beta two", readInstalled(t, fsys, inst, "beta/doc2.md"))
}

func TestEnsureInstalledRecopiesWhenTreeMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()))

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)

	// Someone removed the installed tree out from under us; the marker alone
	// must not satisfy the warm-start check.
	require.NoError(t, fsys.RemoveAll(inst.ResourcesDir()))

	result, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, result.Installed)
	assert.Equal(t, "alpha one", readInstalled(t, fsys, inst, "alpha/doc1.md"))
}

func TestEnsureInstalledSourceMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, afero.NewMemMapFs())

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, copier.ErrSourceNotFound))

	// Marker unchanged so the next activation retries.
	stale, err := inst.store.Stale("1.0.0")
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestEnsureInstalledCopyFailureLeavesMarkerUnchanged(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()))
	inst.copyTree = func(context.Context, afero.Fs, string, afero.Fs, string) error {
		return errors.New("disk full")
	}

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.Error(t, err)

	version, err := inst.store.InstalledVersion()
	require.NoError(t, err)
	assert.Empty(t, version)
}

func TestExternalDiscoveryCopy(t *testing.T) {
	fsys := afero.NewMemMapFs()
	externalDir := filepath.Join("home", ".ai", "resources")
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()),
		WithExternalDiscovery(ExternalConfig{
			Enabled:    true,
			Dir:        externalDir,
			Categories: []string{"beta/**"},
		}))

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)

	content, err := afero.ReadFile(fsys, filepath.Join(externalDir, "beta", "doc2.md"))
	require.NoError(t, err)
	assert.Equal(t, "beta two", string(content))

	// alpha/ is not a selected category.
	exists, err := afero.Exists(fsys, filepath.Join(externalDir, "alpha", "doc1.md"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExternalDiscoveryFailureDoesNotFailInstall(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()),
		WithExternalDiscovery(ExternalConfig{Enabled: true, Dir: ""}))

	result, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, result.Installed)

	version, err := inst.store.InstalledVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}

func TestDefaultBundleInstalls(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst, err := New(WithFs(fsys), WithGlobalRoot(filepath.Join("home", ".promptstash")))
	require.NoError(t, err)

	_, err = inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)

	infos, err := afero.ReadDir(fsys, inst.ResourcesDir())
	require.NoError(t, err)

	var categories []string
	for _, info := range infos {
		if info.IsDir() {
			categories = append(categories, info.Name())
		}
	}
	assert.Contains(t, categories, "agents")
	assert.Contains(t, categories, "prompts")
	assert.Contains(t, categories, "instructions")
	assert.Contains(t, categories, "skills")

	_, statErr := fsys.Stat(filepath.Join(inst.GlobalRoot(), "state.json"))
	assert.NoError(t, statErr)
}

func TestResetForcesReinstall(t *testing.T) {
	fsys := afero.NewMemMapFs()
	inst := newTestInstaller(t, fsys, newBundleFs(t, defaultFiles()))

	_, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	require.NoError(t, inst.Reset())

	result, err := inst.EnsureInstalled(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, result.Installed)
}

func TestDefaultGlobalRoot(t *testing.T) {
	root, err := DefaultGlobalRoot()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".promptstash"), root)
}
