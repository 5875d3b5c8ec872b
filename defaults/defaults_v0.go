package defaults

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/sahib/config"
	"github.com/sahib/safeio/util/hashlib"
)

func sizeValidator(val interface{}) error {
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("size is not a string: %v", val)
	}

	if _, err := humanize.ParseBytes(s); err != nil {
		return fmt.Errorf("invalid size `%s`: %v", s, err)
	}

	return nil
}

// DefaultsV0 is the default config validation for safeio
var DefaultsV0 = config.DefaultMapping{
	"io": config.DefaultMapping{
		"buffer_size": config.DefaultEntry{
			Default:      64 * 1024,
			NeedsRestart: false,
			Docs:         "Size of the buffers used for copying (and copying back a backup).",
			Validator:    config.IntRangeValidator(512, 64*1024*1024),
		},
		"block_size": config.DefaultEntry{
			Default:      64 * 1024,
			NeedsRestart: false,
			Docs:         "Size of a single block fetched by »safeioctl fetch«.",
			Validator:    config.IntRangeValidator(1, 64*1024*1024),
		},
		"compress_algo": config.DefaultEntry{
			Default:      "none",
			NeedsRestart: false,
			Docs:         "Compression used by »write« and »read« when no --compress is given.",
			Validator: config.EnumValidator(
				"none", "snappy", "lz4", "auto",
			),
		},
		"rate_limit": config.DefaultEntry{
			Default:      "0",
			NeedsRestart: false,
			Docs:         "Maximum throughput per second (like »10MB«). 0 means no limit.",
			Validator:    sizeValidator,
		},
	},
	"pool": config.DefaultMapping{
		"max_idle": config.DefaultEntry{
			Default:      16,
			NeedsRestart: true,
			Docs:         "How many released buffers of one size are kept. 0 keeps all.",
			Validator:    config.IntRangeValidator(0, 4096),
		},
	},
	"fetch": config.DefaultMapping{
		"timeout": config.DefaultEntry{
			Default:      "30s",
			NeedsRestart: false,
			Docs:         "Timeout of a single HTTP request done by »safeioctl fetch«.",
			Validator:    config.DurationValidator(),
		},
	},
	"hash": config.DefaultMapping{
		"algo": config.DefaultEntry{
			Default:      hashlib.DefaultAlgorithm,
			NeedsRestart: false,
			Docs:         "Algorithm used by »safeioctl hash« when no --algo is given.",
			Validator:    config.EnumValidator(hashlib.AlgorithmNames()...),
		},
	},
	"log": config.DefaultMapping{
		"level": config.DefaultEntry{
			Default:      "info",
			NeedsRestart: false,
			Docs:         "Minimum level of log messages to print.",
			Validator: config.EnumValidator(
				"debug", "info", "warning", "error",
			),
		},
		"colors": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Use colors in log output when printing to a terminal.",
		},
		"show_pid": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Prefix every log line with the process id.",
		},
	},
}
