// Command fsa is a command line tool for automaton dictionaries.
//
//	fsa build words.txt slownik.dict --encoding=iso-8859-2
//	fsa dump slownik.dict --api
//	echo abka | fsa check slownik.dict --distance=2
package main

import (
	"context"
	"os"

	"github.com/attic-labs/kingpin"
	"github.com/sirupsen/logrus"
)

// handler runs a parsed command.
type handler func(ctx context.Context) error

// command declares a subcommand on app and returns the code that runs it.
type command func(app *kingpin.Application) (*kingpin.CmdClause, handler)

var commands = []command{
	dumpCommand,
	buildCommand,
	checkCommand,
}

func main() {
	kingpin.EnableFileExpansion = false
	app := kingpin.New("fsa", "Tools for finite state automaton dictionaries.")
	app.HelpFlag.Short('h')
	verbose := app.Flag("verbose", "show debug output").Short('v').Bool()

	handlers := map[string]handler{}
	for _, cmd := range commands {
		clause, h := cmd(app)
		handlers[clause.FullCommand()] = h
	}

	input := kingpin.MustParse(app.Parse(os.Args[1:]))

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := handlers[input](context.Background()); err != nil {
		logrus.WithError(err).Fatal(input + " failed")
	}
}
