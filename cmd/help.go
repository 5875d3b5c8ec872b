package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

// Help bundles the documentation of a single command.
type Help struct {
	Usage       string
	ArgsUsage   string
	Description string
	Flags       []cli.Flag
}

func die(msg string) {
	// be really pedantic when help is missing.
	panic(msg)
}

var rateFlag = cli.StringFlag{
	Name:  "rate,r",
	Value: "",
	Usage: "Maximum throughput per second, like »10MB« (default: io.rate_limit)",
}

// HelpTexts maps the dotted command path to its documentation.
var HelpTexts = map[string]Help{
	"write": {
		Usage:     "Write stdin crash-safe to a file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "compress,c",
				Value: "",
				Usage: "Compression algorithm: none, snappy, lz4 or auto (default: io.compress_algo)",
			},
			rateFlag,
		},
		Description: `Read all of stdin and store it at <path>.

   The data is first written to »<path>~«. Only when all of stdin was written
   it is copied over <path>. If the machine crashes while copying, the next
   »read« will notice and use »<path>~« instead. The backup file is not
   deleted afterwards.

   With »--compress auto« the algorithm is guessed from the first bytes
   of the input and the file extension.

EXAMPLES:

   $ tar c . | safeioctl write backup.tar
   $ safeioctl write --compress lz4 notes.txt < notes.txt`,
	},
	"read": {
		Usage:     "Print the complete version of a file to stdout",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "raw",
				Usage: "Do not decompress, even if the content looks compressed",
			},
			rateFlag,
		},
		Description: `Print the content of <path> to stdout.

   If a previous »write« was interrupted while copying back, the complete
   backup »<path>~« is printed instead. Content written with »--compress« is
   decompressed transparently.`,
	},
	"status": {
		Usage:     "Show which of a file and its backup would be read",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "yaml,y",
				Usage: "Print the status as yaml",
			},
		},
		Description: `Show size and modification time of <path> and »<path>~«.

   The backup is read if it is larger than the original but not newer.
   This is the case when copying back the backup was interrupted.`,
	},
	"hash": {
		Usage:     "Print a checksum of the complete version of a file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "short,s",
				Usage: "Only print the first 12 characters",
			},
			cli.StringFlag{
				Name:  "algo,a",
				Value: "",
				Usage: "Hash algorithm: sha2-256, sha3-256 or blake2b-256 (default: hash.algo)",
			},
		},
		Description: `Print the base58 encoded multihash of whatever »read« would print.

   The multihash names its algorithm, so hashes made with different
   algorithms never look alike.`,
	},
	"copy": {
		Usage:     "Copy a file crash-safe",
		ArgsUsage: "<src> <dst>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "no-progress,q",
				Usage: "Do not show a progress bar",
			},
			rateFlag,
		},
		Description: `Copy the complete version of <src> to <dst>.

   Both ends use the same protocol as »read« and »write«.
   A progress bar is shown when stderr is a terminal.`,
	},
	"fill": {
		Usage:     "Write a file consisting of one repeated byte",
		ArgsUsage: "<path> <size>",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "byte,b",
				Value: 0,
				Usage: "The byte value to fill with (0-255)",
			},
		},
		Description: `Write <size> bytes (like »4K« or »1.5GB«) to <path> crash-safe.

   Useful for preallocating files or testing.`,
	},
	"fetch": {
		Usage:     "Read a range of a remote file via HTTP",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "offset,o",
				Value: "0",
				Usage: "Where to start reading",
			},
			cli.StringFlag{
				Name:  "length,l",
				Value: "",
				Usage: "How much to read at most (default: until the end)",
			},
			cli.StringFlag{
				Name:  "block-size,b",
				Value: "",
				Usage: "Size of a single range request (default: io.block_size)",
			},
			cli.StringFlag{
				Name:  "output,O",
				Value: "",
				Usage: "Write to this path crash-safe instead of stdout",
			},
		},
		Description: `Read <url> in blocks using HTTP range requests.

   The server has to support »Range:« headers and report »Content-Length«.
   With »--verbose« the number of requests done is printed.`,
	},
	"version": {
		Usage: "Show the version and build details",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "yaml,y",
				Usage: "Print the details as yaml",
			},
		},
		Description: `Show the version of safeioctl, how it was built and which
   config format and compression algorithms it understands.`,
	},
	"config": {
		Usage:     "View and modify config options",
		ArgsUsage: "[get|set|list|doc]",
		Description: `Handle config related actions.

   The config is stored at ~/.config/safeio/config.yml by default.
   Use »--config« or SAFEIO_CONFIG to change that. The config itself is
   written crash-safe. Without a subcommand, »list« is assumed.`,
	},
	"config.list": {
		Usage:       "Show all config options",
		Description: "Show all config options as »key: value«.",
	},
	"config.get": {
		Usage:       "Get a specific config key",
		ArgsUsage:   "<key>",
		Description: "Print the value of <key>.",
	},
	"config.set": {
		Usage:     "Set a specific config key to a new value",
		ArgsUsage: "<key> <value>",
		Description: `Set <key> to <value> and save the config.

   The value is checked against the type and range of the key.`,
	},
	"config.doc": {
		Usage:       "Show the documentation of a config key",
		ArgsUsage:   "<key>",
		Description: "Print docs, default value and whether a restart is needed.",
	},
}

func injectHelp(cmd *cli.Command, path string) {
	help, ok := HelpTexts[path]
	if !ok {
		die(fmt.Sprintf("bug: no such help entry: %v", path))
	}

	cmd.Usage = help.Usage
	cmd.ArgsUsage = help.ArgsUsage
	cmd.Description = help.Description
	cmd.Flags = help.Flags
}

func translateHelp(cmds []cli.Command, prefix []string) {
	for idx := range cmds {
		path := append(append([]string{}, prefix...), cmds[idx].Name)
		injectHelp(&cmds[idx], strings.Join(path, "."))
		translateHelp(cmds[idx].Subcommands, path)
	}
}

// TranslateHelp fills in the usage and description for each command.
// This is separated from the command definition to make things more readable,
// and separate logic from the (lengthy) documentation.
func TranslateHelp(cmds []cli.Command) []cli.Command {
	translateHelp(cmds, nil)
	return cmds
}
