package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sahib/safeio/mio/pool"
	colorlog "github.com/sahib/safeio/util/log"
	"github.com/sahib/safeio/version"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func init() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(formatter)
}

func formatGroup(category string) string {
	return strings.ToUpper(category) + " COMMANDS"
}

////////////////////////////
// Commandline definition //
////////////////////////////

// RunCmdline starts a safeioctl commandline tool.
func RunCmdline(args []string) int {
	app := cli.NewApp()
	app.Name = "safeioctl"
	app.Usage = "Read and write files without losing them on a crash"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf(
		"%s [buildtime: %s]",
		version.String(),
		version.BuildTime,
	)
	app.CommandNotFound = commandNotFound
	app.ErrWriter = &colorlog.Writer{Level: log.ErrorLevel}

	// Groups:
	fileGroup := formatGroup("file")
	netwGroup := formatGroup("network")
	miscGroup := formatGroup("misc")

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose,V",
			Usage: "Print debug output",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "Never use colors in the output",
		},
		cli.StringFlag{
			Name:   "config,c",
			Usage:  "Path of the config file",
			Value:  "",
			EnvVar: "SAFEIO_CONFIG",
		},
		cli.StringFlag{
			Name:   "log-path,l",
			Usage:  "Where to output the log. May be 'stderr' (default) or 'stdout'",
			Value:  "stderr",
			EnvVar: "SAFEIO_LOG",
		},
	}

	app.Commands = TranslateHelp([]cli.Command{
		{
			Name:     "write",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(1), withConfig(handleWrite)),
		}, {
			Name:     "read",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(1), withConfig(handleRead)),
		}, {
			Name:     "status",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(1), withConfig(handleStatus)),
		}, {
			Name:     "hash",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(1), withConfig(handleHash)),
		}, {
			Name:     "copy",
			Aliases:  []string{"cp"},
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(2), withConfig(handleCopy)),
		}, {
			Name:     "fill",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(2), withConfig(handleFill)),
		}, {
			Name:     "fetch",
			Category: netwGroup,
			Action:   withArgCheck(needAtLeast(1), withConfig(handleFetch)),
		}, {
			Name:     "version",
			Category: miscGroup,
			Action:   handleVersion,
		}, {
			Name:     "config",
			Aliases:  []string{"cfg"},
			Category: miscGroup,
			Action:   withConfig(handleConfigList),
			Subcommands: []cli.Command{
				{
					Name:   "list",
					Action: withConfig(handleConfigList),
				}, {
					Name:   "get",
					Action: withArgCheck(needAtLeast(1), withConfig(handleConfigGet)),
				}, {
					Name:   "set",
					Action: withArgCheck(needAtLeast(2), withConfig(handleConfigSet)),
				}, {
					Name:   "doc",
					Action: withArgCheck(needAtLeast(1), withConfig(handleConfigDoc)),
				},
			},
		},
	})

	app.Before = setupLogging
	app.After = func(ctx *cli.Context) error {
		pool.Teardown()
		return nil
	}

	if err := app.Run(args); err != nil {
		if exitErr, ok := err.(ExitCode); ok {
			log.Error(exitErr.Message)
			return exitErr.Code
		}

		log.Error(err)
		return UnknownError
	}

	return Success
}
