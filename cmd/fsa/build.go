package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sort"

	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smhanov/fsa"
	"github.com/smhanov/fsa/dictionary"
)

type buildOptions struct {
	input     string
	output    string
	encoding  string
	separator string
	numbers   bool
	prefixes  bool
	infixes   bool
}

func buildCommand(app *kingpin.Application) (*kingpin.CmdClause, handler) {
	cmd := app.Command("build", "Compile a word list, one entry per line, into an automaton.")
	opts := &buildOptions{}
	cmd.Arg("words", "word list, - for stdin").Required().StringVar(&opts.input)
	cmd.Arg("output", "automaton file to write").Required().StringVar(&opts.output)
	cmd.Flag("encoding", "text encoding of the entries; writes a .info descriptor").StringVar(&opts.encoding)
	cmd.Flag("separator", "field separator of morphological entries").StringVar(&opts.separator)
	cmd.Flag("numbers", "store sequence counts for perfect hashing").BoolVar(&opts.numbers)
	cmd.Flag("prefixes", "base forms use prefix coding").BoolVar(&opts.prefixes)
	cmd.Flag("infixes", "base forms use infix coding").BoolVar(&opts.infixes)

	return cmd, func(ctx context.Context) error {
		in := io.Reader(os.Stdin)
		if opts.input != "-" {
			f, err := os.Open(opts.input)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return build(in, opts)
	}
}

func build(in io.Reader, opts *buildOptions) error {
	var features *dictionary.Features
	if opts.encoding != "" {
		info := bytes.NewBufferString(dictionary.KeyEncoding + "=" + opts.encoding + "\n")
		if opts.separator != "" {
			info.WriteString(dictionary.KeySeparator + "=" + opts.separator + "\n")
		}
		f, err := dictionary.ReadFeatures(info)
		if err != nil {
			return err
		}
		f.UsesPrefixes, f.UsesInfixes = opts.prefixes, opts.infixes
		features = f
	} else if opts.separator != "" {
		return errors.New("--separator needs --encoding")
	}

	// only the codec of enc is used, its automaton is empty
	enc, err := dictionary.New(fsa.NewBuilder().Finish(), features)
	if err != nil {
		return err
	}

	var entries [][]byte
	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if text == "" {
			continue
		}
		seq, err := enc.Encode(text)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		entries = append(entries, seq)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i], entries[j]) < 0 })

	var buildOpts []fsa.BuildOption
	if opts.numbers {
		buildOpts = append(buildOpts, fsa.WithNumbers())
	}
	if features != nil && features.Separator != 0 {
		buildOpts = append(buildOpts, fsa.WithAnnotationSeparator(features.Separator))
	}
	b := fsa.NewBuilder(buildOpts...)
	for i, seq := range entries {
		if i > 0 && bytes.Equal(seq, entries[i-1]) {
			continue
		}
		if err := b.Add(seq); err != nil {
			return err
		}
	}

	automaton := b.Finish()
	size, err := automaton.Save(opts.output)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"entries": humanize.Comma(int64(b.NumAdded())),
		"arcs":    humanize.Comma(int64(automaton.NumArcs())),
		"size":    humanize.Bytes(uint64(size)),
	}).Info("wrote " + opts.output)

	if features == nil {
		return nil
	}
	f, err := os.Create(dictionary.FeaturesPath(opts.output))
	if err != nil {
		return err
	}
	if _, err := features.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
