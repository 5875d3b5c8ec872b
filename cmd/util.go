package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
	"github.com/sahib/safeio/mio/pool"
	"github.com/sahib/safeio/mio/throttle"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/time/rate"
)

// ExitCode is an error that maps the error interface to a specific error
// message and a unix exit code
type ExitCode struct {
	Code    int
	Message string
}

func (err ExitCode) Error() string {
	return err.Message
}

// toExitCode converts `err` of operation `what` to an ExitCode.
func toExitCode(what string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(ExitCode); ok {
		return err
	}

	code := IOError
	if os.IsNotExist(e.Cause(err)) {
		code = NotFound
	}

	return ExitCode{code, fmt.Sprintf("%s: %v", what, err)}
}

func yesify(val bool) string {
	if val {
		return color.GreenString("yes")
	}

	return color.RedString("no")
}

type checkFunc func(ctx *cli.Context) int

func withArgCheck(checker checkFunc, handler cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if checker(ctx) != Success {
			os.Exit(BadArgs)
		}

		return handler(ctx)
	}
}

func needAtLeast(min int) checkFunc {
	return func(ctx *cli.Context) int {
		if ctx.NArg() < min {
			if min == 1 {
				log.Warningf("Need at least %d argument.", min)
			} else {
				log.Warningf("Need at least %d arguments.", min)
			}

			if err := cli.ShowCommandHelp(ctx, ctx.Command.Name); err != nil {
				log.Warningf("Failed to display --help: %v", err)
			}

			return BadArgs
		}

		return Success
	}
}

type cmdHandlerWithConfig func(ctx *cli.Context, cfg *config.Config) error

// withConfig loads the config, applies it to logging and the buffer pool
// and hands it to `handler`.
func withConfig(handler cmdHandlerWithConfig) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		path, err := configPath(ctx)
		if err != nil {
			return ExitCode{BadArgs, fmt.Sprintf("config path: %v", err)}
		}

		cfg, err := loadConfig(path)
		if err != nil {
			return ExitCode{UnknownError, fmt.Sprintf("failed to load config %s: %v", path, err)}
		}

		applyLogConfig(ctx, cfg)
		pool.Init(int(cfg.Int("pool.max_idle")))
		return handler(ctx, cfg)
	}
}

func parseSize(s string) (int64, error) {
	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}

	if size > math.MaxInt64 {
		return 0, e.Errorf("size too large: %s", s)
	}

	return int64(size), nil
}

// rateLimiter builds a limiter from --rate or from io.rate_limit.
func rateLimiter(ctx *cli.Context, cfg *config.Config) (*rate.Limiter, error) {
	limit := ctx.String("rate")
	if limit == "" {
		limit = cfg.String("io.rate_limit")
	}

	bytesPerSec, err := parseSize(limit)
	if err != nil {
		return nil, ExitCode{BadArgs, fmt.Sprintf("invalid rate `%s`: %v", limit, err)}
	}

	return throttle.NewLimiter(bytesPerSec), nil
}

func bufferSize(cfg *config.Config) int {
	return int(cfg.Int("io.buffer_size"))
}
