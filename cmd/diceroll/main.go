/*
Diceroll starts an interactive dice-rolling session.

It reads dice expressions from stdin, one per line, evaluates each against
the engine, and prints the rendered result. The session keeps a running
total across every successful roll, retrievable with the "/total"
meta-command.

Usage:

	diceroll [flags]

The flags are:

	-v, --version
		Print the current version and exit.

	-a, --advantage STRING
		Apply "adv" or "dis" to every top-level 1d20 rolled this session.
		Defaults to no advantage.

	-c, --allow-comments
		Allow trailing free text after an expression to be treated as a
		comment instead of a syntax error.

	-m, --markdown
		Render results with the Markdown stringifier instead of the plain
		one.

	-d, --direct
		Force reading directly from stdin instead of using GNU-readline-style
		line editing, even when connected to a TTY.

Type "/quit" to exit the session.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/diceroll"
	"github.com/dekarrin/diceroll/internal/input"
	"github.com/dekarrin/diceroll/internal/version"
	"github.com/dekarrin/diceroll/render"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitSessionError
	ExitInitError
)

var (
	returnCode   = ExitSuccess
	flagVersion  = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagAdv      = pflag.StringP("advantage", "a", "none", "Apply \"adv\" or \"dis\" to every top-level 1d20 this session")
	flagComments = pflag.BoolP("allow-comments", "c", false, "Allow trailing free text after an expression as a comment")
	flagMarkdown = pflag.BoolP("markdown", "m", false, "Render results with the Markdown stringifier")
	flagDirect   = pflag.BoolP("direct", "d", false, "Force direct stdin reading instead of readline-style editing")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	adv, err := parseAdvFlag(*flagAdv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var stringifier render.Stringifier = render.SimpleStringifier{}
	if *flagMarkdown {
		stringifier = render.MarkdownStringifier{}
	}

	reader, err := newReader(*flagDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer reader.Close()
	reader.SetPrompt("roll> ")

	if err := runSession(reader, stringifier, adv, *flagComments); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitSessionError
	}
}

func newReader(forceDirect bool) (input.LineReader, error) {
	if !forceDirect && isatty.IsTerminal(os.Stdin.Fd()) {
		return input.NewInteractiveReader("roll> ")
	}
	return input.NewDirectReader(os.Stdin), nil
}

func parseAdvFlag(s string) (diceroll.AdvType, error) {
	switch s {
	case "", "none":
		return diceroll.NONE, nil
	case "adv":
		return diceroll.ADV, nil
	case "dis":
		return diceroll.DIS, nil
	default:
		return diceroll.NONE, fmt.Errorf("invalid --advantage value %q (want none, adv, or dis)", s)
	}
}

func runSession(reader input.LineReader, stringifier render.Stringifier, adv diceroll.AdvType, allowComments bool) error {
	roller := diceroll.NewRoller()
	opts := diceroll.Options{
		Advantage:     adv,
		AllowComments: allowComments,
		Stringifier:   stringifier,
	}

	var total int
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			return nil
		case "/total":
			fmt.Printf("running total: %d\n", total)
			continue
		}

		result, err := roller.Roll(line, opts)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err.Error())
			continue
		}
		total += result.Total
		fmt.Println(result.Result)
		if result.Crit != diceroll.CritNone {
			fmt.Printf("  (%s)\n", result.Crit)
		}
	}
}
