package defaults

import (
	"io"

	e "github.com/pkg/errors"
	"github.com/sahib/config"
)

// CurrentVersion is the current version of safeio's config
const CurrentVersion = 0

// Defaults is the default validation for safeio
var Defaults = DefaultsV0

// OpenMigratedConfig reads the yaml config in `r` and migrates it to
// the newest version if required. If `r` is nil, a config with only
// default values is returned.
func OpenMigratedConfig(r io.Reader) (*config.Config, error) {
	// Add here any migrations with mgr.Add if needed.
	mgr := config.NewMigrater(CurrentVersion, config.StrictnessPanic)
	mgr.Add(0, nil, DefaultsV0)

	var dec config.Decoder
	if r != nil {
		dec = config.NewYamlDecoder(r)
	}

	cfg, err := mgr.Migrate(dec)
	if err != nil {
		return nil, e.Wrap(err, "failed to migrate")
	}

	return cfg, nil
}

// SaveConfig writes `cfg` as yaml to `w`.
func SaveConfig(w io.Writer, cfg *config.Config) error {
	return cfg.Save(config.NewYamlEncoder(w))
}
