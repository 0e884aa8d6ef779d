/*
Package fsa reads finite state automata that store large sets of byte
sequences (usually the words of a dictionary) in a compact binary form.

An automaton is a graph of nodes joined by labelled arcs. Every path from the
start node to an arc marked final spells one stored sequence. Shared prefixes
and suffixes are merged, so a list of millions of words usually needs only a
few megabytes. A summary of the data format is found at the top of disk.go.

Open an automaton with Load() or Read(). It is immutable after decoding and
safe for concurrent use by any number of goroutines. Nodes and arcs are plain
integer handles into flat arrays owned by the Automaton:

	a, err := fsa.Load("words.dict")
	for arc, ok := a.FirstArc(a.StartNode()); ok; arc, ok = a.NextArc(arc) {
		fmt.Printf("%c final=%v\n", a.Label(arc), a.IsFinal(arc))
	}

Exact lookups are done with Contains(), and every stored sequence can be
enumerated lazily with Sequences(). Enumeration has a depth guard, because a
malformed automaton may contain a loop that would otherwise never end.

Automata are normally built by a separate tool. A Builder is included for
tests and for the fsa command: add sequences in strictly increasing byte
order, then call Finish().
*/
package fsa
