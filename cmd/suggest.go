package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"github.com/xrash/smetrics"
)

// Names people type out of habit from other tools.
var habitNames = map[string]string{
	"cat":  "read",
	"cp":   "copy",
	"stat": "status",
	"curl": "fetch",
	"wget": "fetch",
	"dd":   "fill",
	"tee":  "write",
	"sum":  "hash",
}

const minSimilarity = 0.6

type suggestion struct {
	name  string
	score float64
}

// similarity is 1.0 for equal strings and approaches 0.0 for strings that
// have nothing in common. Substitutions cost as much as insert + delete.
func similarity(s, t string) float64 {
	lensum := float64(len(s) + len(t))
	if lensum == 0 {
		return 1.0
	}

	dist := float64(smetrics.WagnerFischer(s, t, 1, 1, 2))
	return (lensum - dist) / lensum
}

// scoreCommand rates how likely `typed` was meant to be `cmd`.
// A typed prefix of a name or alias counts as a perfect match.
func scoreCommand(typed string, cmd cli.Command) float64 {
	best := 0.0
	for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
		if typed != "" && strings.HasPrefix(name, typed) {
			return 1.0
		}

		if score := similarity(typed, name); score > best {
			best = score
		}
	}

	return best
}

func findSimilarCommands(typed string, cmds []cli.Command) []suggestion {
	scores := make(map[string]float64)
	for _, cmd := range cmds {
		if score := scoreCommand(typed, cmd); score >= minSimilarity {
			scores[cmd.Name] = score
		}
	}

	if name, ok := habitNames[typed]; ok {
		for _, cmd := range cmds {
			if cmd.Name == name {
				scores[name] = 1.0
			}
		}
	}

	similars := make([]suggestion, 0, len(scores))
	for name, score := range scores {
		similars = append(similars, suggestion{name: name, score: score})
	}

	sort.Slice(similars, func(i, j int) bool {
		if similars[i].score != similars[j].score {
			return similars[i].score > similars[j].score
		}

		return similars[i].name < similars[j].name
	})

	return similars
}

// commandPath returns the valid part of the command line that was
// typed (like ["config"] for "safeioctl config sett") and the commands
// that were possible after it.
func commandPath(ctx *cli.Context) ([]string, []cli.Command) {
	for ctx.Parent() != nil {
		ctx = ctx.Parent()
	}

	args := ctx.Args()
	cmds := ctx.App.Commands
	path := []string{}

	// The last argument is the one that was not found.
	for idx := 0; idx+1 < len(args); idx++ {
		var next *cli.Command
		for cmdIdx := range cmds {
			if cmds[cmdIdx].HasName(args[idx]) {
				next = &cmds[cmdIdx]
				break
			}
		}

		if next == nil || len(next.Subcommands) == 0 {
			break
		}

		path = append(path, next.Name)
		cmds = next.Subcommands
	}

	return path, cmds
}

func printSuggestions(w io.Writer, typed string, path []string, similars []suggestion) {
	badCmd := color.RedString(typed)
	if len(path) == 0 {
		fmt.Fprintf(w, "`%s` is not a valid command. ", badCmd)
	} else {
		parent := color.YellowString(strings.Join(path, " "))
		fmt.Fprintf(w, "`%s` is not a valid subcommand of `%s`. ", badCmd, parent)
	}

	switch len(similars) {
	case 0:
		fmt.Fprintln(w)
	case 1:
		fmt.Fprintf(w, "Did you maybe mean `%s`?\n", color.GreenString(similars[0].name))
	default:
		fmt.Fprintln(w, "\n\nDid you maybe mean one of those?")
		for _, similar := range similars {
			fmt.Fprintf(w, "  * %s\n", color.GreenString(similar.name))
		}
	}
}

func commandNotFound(ctx *cli.Context, typed string) {
	path, cmds := commandPath(ctx)
	printSuggestions(ctx.App.Writer, typed, path, findSimilarCommands(typed, cmds))
}
