package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/smhanov/fsa"
	"github.com/smhanov/fsa/dictionary"
)

func dumpCommand(app *kingpin.Application) (*kingpin.CmdClause, handler) {
	cmd := app.Command("dump", "Print the properties and contents of an automaton.")
	path := cmd.Arg("file", "automaton file").Required().String()
	useAPI := cmd.Flag("api", "enumerate with the sequence iterator instead of walking the nodes").Bool()
	maxDepth := cmd.Flag("max-depth", "longest sequence to follow").Default(fmt.Sprint(fsa.DefaultMaxDepth)).Int()

	return cmd, func(ctx context.Context) error {
		w := bufio.NewWriter(os.Stdout)
		err := dump(w, *path, *useAPI, *maxDepth)
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
		return err
	}
}

func dump(w io.Writer, path string, useAPI bool, maxDepth int) error {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	d, err := dictionary.Load(path)
	if err != nil {
		return err
	}
	a := d.Automaton()

	fmt.Fprintln(w, "FSA properties")
	fmt.Fprintln(w, "--------------------")
	fmt.Fprintf(w, "FSA file version    : %d\n", a.Version())
	fmt.Fprintf(w, "Compiled with flags : %s\n", a.Flags())
	fmt.Fprintf(w, "File size           : %s\n", humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(w, "Number of arcs      : %s\n", humanize.Comma(int64(a.NumArcs())))
	fmt.Fprintf(w, "Number of nodes     : %s\n", humanize.Comma(int64(a.NumNodes())))
	fmt.Fprintf(w, "Annotation separator: %c\n", a.AnnotationSeparator())
	fmt.Fprintf(w, "Filler character    : %c\n", a.Filler())
	fmt.Fprintln(w)

	if d.Kind() == dictionary.WithFeatures {
		f := d.Features()
		sep := "(none)"
		if f.Separator != 0 {
			if sep, err = d.Decode([]byte{f.Separator}); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, "Dictionary metadata")
		fmt.Fprintln(w, "--------------------")
		fmt.Fprintf(w, "Encoding            : %s\n", f.Encoding)
		fmt.Fprintf(w, "Separator           : %s\n", sep)
		fmt.Fprintf(w, "Uses prefixes       : %t\n", f.UsesPrefixes)
		fmt.Fprintf(w, "Uses infixes        : %t\n", f.UsesInfixes)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "FSA data")
	fmt.Fprintln(w, "--------------------")

	emit := func(seq []byte) error {
		text, err := d.Decode(seq)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	}
	if useAPI {
		it := a.Sequences(fsa.MaxDepth(maxDepth))
		for it.Next() {
			if err := emit(it.Bytes()); err != nil {
				return err
			}
		}
		err = it.Err()
	} else {
		err = walkNodes(a, maxDepth, emit)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "--------------------")
	fmt.Fprintf(w, "Dictionary dumped in %.3f seconds.\n", time.Since(start).Seconds())
	return nil
}

type pending struct {
	arc   fsa.Arc
	depth int
}

// walkNodes visits every arc reachable from the start node in depth first
// order and calls emit with the path of each final arc. The path is only
// valid during the call.
func walkNodes(a *fsa.Automaton, maxDepth int, emit func([]byte) error) error {
	first, ok := a.FirstArc(a.StartNode())
	if !ok {
		return nil
	}

	var word []byte
	stack := []pending{{arc: first}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		word = append(word[:p.depth], a.Label(p.arc))
		if a.IsFinal(p.arc) {
			if err := emit(word); err != nil {
				return err
			}
		}

		if next, ok := a.NextArc(p.arc); ok {
			stack = append(stack, pending{next, p.depth})
		}
		if a.IsTerminal(p.arc) {
			continue
		}
		if child, ok := a.FirstArc(a.Destination(p.arc)); ok {
			// same bound as fsa.Iterator: the path may not grow past maxDepth
			if len(word) >= maxDepth {
				return errors.Wrapf(fsa.ErrTraversalLimit,
					"buffer limit of %d bytes exceeded, a loop in the automaton maybe?", maxDepth)
			}
			stack = append(stack, pending{child, p.depth + 1})
		}
	}
	return nil
}
