package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/attic-labs/kingpin"
	"github.com/sirupsen/logrus"

	"github.com/smhanov/fsa/dictionary"
	"github.com/smhanov/fsa/speller"
)

type checkOptions struct {
	dict     string
	config   string
	distance int
	workers  int
}

func checkCommand(app *kingpin.Application) (*kingpin.CmdClause, handler) {
	cmd := app.Command("check", "Spell check words read from stdin.")
	opts := &checkOptions{}
	cmd.Arg("dict", "dictionary file").Required().StringVar(&opts.dict)
	cmd.Flag("config", "speller settings in TOML").StringVar(&opts.config)
	cmd.Flag("distance", "maximum edit distance of suggestions, overrides the config").Default("-1").IntVar(&opts.distance)
	cmd.Flag("workers", "words checked in parallel, overrides the config").Default("0").IntVar(&opts.workers)

	return cmd, func(ctx context.Context) error {
		w := bufio.NewWriter(os.Stdout)
		err := check(ctx, os.Stdin, w, opts)
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
		return err
	}
}

func check(ctx context.Context, in io.Reader, w io.Writer, opts *checkOptions) error {
	cfg := speller.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = speller.LoadConfig(opts.config); err != nil {
			return err
		}
	}
	if opts.distance >= 0 {
		cfg.MaxDistance = opts.distance
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	d, err := dictionary.Load(opts.dict)
	if err != nil {
		return err
	}
	s, err := speller.NewWithConfig(d, cfg)
	if err != nil {
		return err
	}

	var words []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		words = append(words, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	logrus.WithField("words", len(words)).Debug("checking")

	results, err := s.CheckAll(ctx, words, cfg.Workers)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Correct {
			fmt.Fprintf(w, "%s: ok\n", r.Word)
			continue
		}
		suggestions := append(append([]string(nil), r.Suggestions...), r.RunOn...)
		fmt.Fprintf(w, "%s: %s\n", r.Word, strings.Join(suggestions, ", "))
	}
	return nil
}
