package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
	"github.com/sahib/config"
	colorlog "github.com/sahib/safeio/util/log"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func logVerbose(ctx *cli.Context, format string, args ...interface{}) {
	if !ctx.GlobalBool("verbose") {
		return
	}

	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}

	fmt.Fprintf(os.Stderr, "-- "+format, args...)
}

// setLogPath directs the log to `path` and tells if that is a terminal.
func setLogPath(path string) (bool, error) {
	switch path {
	case "stdout":
		log.SetOutput(os.Stdout)
		return isatty.IsTerminal(os.Stdout.Fd()), nil
	case "stderr", "":
		log.SetOutput(os.Stderr)
		return isatty.IsTerminal(os.Stderr.Fd()), nil
	default:
		fd, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return false, err
		}

		log.SetOutput(fd)
		return false, nil
	}
}

var formatter = &colorlog.FancyLogFormatter{}

func setColors(useColors bool) {
	color.NoColor = !useColors
	formatter.UseColors = useColors
	log.SetFormatter(formatter)
}

func setupLogging(ctx *cli.Context) error {
	isTerm, err := setLogPath(ctx.GlobalString("log-path"))
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("failed to open log: %v", err)}
	}

	setColors(isTerm && !ctx.GlobalBool("no-color"))

	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	if ctx.GlobalBool("verbose") {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}

	return nil
}

// applyLogConfig adjusts the logger to the config.
// Command line flags take precedence.
func applyLogConfig(ctx *cli.Context, cfg *config.Config) {
	if !cfg.Bool("log.colors") {
		setColors(false)
	}

	formatter.ShowPid = cfg.Bool("log.show_pid")

	if ctx.GlobalBool("verbose") {
		return
	}

	level, err := log.ParseLevel(cfg.String("log.level"))
	if err != nil {
		log.Warningf("bad log level in config: %v", err)
		return
	}

	log.SetLevel(level)
}
