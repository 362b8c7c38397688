package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/promptstash/promptstash/pkg/installer"
	"github.com/promptstash/promptstash/pkg/logger"
	"github.com/promptstash/promptstash/pkg/picker"
	"github.com/promptstash/promptstash/pkg/tree"
	"github.com/promptstash/promptstash/pkg/version"
	"github.com/promptstash/promptstash/pkg/vfs"
)

// app wires the activation sequence: the installer runs to completion before
// the providers reading from the installed tree are constructed.
type app struct {
	installer *installer.Installer
	vfs       *vfs.Provider
	tree      *tree.Provider
}

func externalConfigFromViper() (installer.ExternalConfig, error) {
	cfg := installer.ExternalConfig{
		Enabled:    viper.GetBool("external.enabled"),
		Dir:        viper.GetString("external.dir"),
		Categories: viper.GetStringSlice("external.categories"),
	}

	if cfg.Enabled && cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, errors.Wrap(err, "failed to get user home directory")
		}
		cfg.Dir = filepath.Join(home, ".ai", "resources")
	}

	return cfg, nil
}

// newApp ensures the resource tree is installed for the running version and
// returns the read surfaces over it.
func newApp(ctx context.Context) (*app, error) {
	extCfg, err := externalConfigFromViper()
	if err != nil {
		return nil, err
	}

	inst, err := installer.New(installer.WithExternalDiscovery(extCfg))
	if err != nil {
		return nil, err
	}

	result, err := inst.EnsureInstalled(ctx, version.Version)
	if err != nil {
		return nil, errors.Wrap(err, "failed to install bundled resources")
	}
	if result.Installed {
		logger.G(ctx).WithField("version", result.Version).Debug("resource tree refreshed")
	}

	v := vfs.NewProvider(afero.NewOsFs(), inst.ResourcesDir())

	return &app{
		installer: inst,
		vfs:       v,
		tree:      tree.NewProvider(v),
	}, nil
}

// resolveResource turns an optional command argument into a document node.
// The argument may be a "promptstash:/" URI or a root-relative path; when
// absent, the user picks from the flat projection of every document.
func (a *app) resolveResource(arg string) (*tree.ResourceNode, error) {
	if arg == "" {
		documents, err := a.tree.Flatten()
		if err != nil {
			return nil, err
		}
		node, err := picker.Pick("Resources", documents)
		if errors.Is(err, picker.ErrNotInteractive) {
			return nil, errors.Wrap(err, "resource argument required")
		}
		return node, err
	}

	u := vfs.NewURI(arg)
	if parsed, err := vfs.ParseURI(arg); err == nil {
		u = parsed
	}

	info, err := a.vfs.Stat(u)
	if err != nil {
		return nil, err
	}
	if info.Type == vfs.TypeDirectory {
		return nil, errors.Errorf("%s is a category, not a document", u.Path())
	}

	return &tree.ResourceNode{
		Label:   u.Name(),
		RelPath: u.Path(),
		Kind:    tree.KindDocument,
	}, nil
}
