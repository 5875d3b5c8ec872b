package cmd

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
	"github.com/sahib/safeio/backup"
	"github.com/sahib/safeio/defaults"
	"github.com/sahib/safeio/util"
	"github.com/sahib/safeio/vfs"
	"github.com/urfave/cli"
)

const defaultConfigPath = "~/.config/safeio/config.yml"

func configPath(ctx *cli.Context) (string, error) {
	path := ctx.GlobalString("config")
	if path == "" {
		path = defaultConfigPath
	}

	return homedir.Expand(path)
}

// loadConfig reads the config at `path` the same way any other file is
// read by safeio. A missing config gives the defaults.
func loadConfig(path string) (*config.Config, error) {
	r, err := backup.Open(vfs.NewLocal(), path)
	if os.IsNotExist(err) {
		return defaults.OpenMigratedConfig(nil)
	}

	if err != nil {
		return nil, err
	}

	defer util.Closer(r)
	return defaults.OpenMigratedConfig(r)
}

// saveConfig writes `cfg` to `path` crash-safe.
func saveConfig(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return e.Wrap(err, "failed to create config dir")
	}

	w, err := backup.Create(vfs.NewLocal(), path, backup.Options{})
	if err != nil {
		return err
	}

	if err := defaults.SaveConfig(w, cfg); err != nil {
		util.Closer(abortCloser{w})
		return err
	}

	return w.Close()
}

// abortCloser makes Abort() usable where an io.Closer is expected.
type abortCloser struct {
	w *backup.Writer
}

func (ac abortCloser) Close() error {
	return ac.w.Abort()
}
