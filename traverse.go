package fsa

import (
	"github.com/pkg/errors"
)

// DefaultMaxDepth is the longest path enumeration follows before giving up.
const DefaultMaxDepth = 5000

// Option configures an enumeration.
type Option func(*Iterator)

// MaxDepth sets the depth guard of an enumeration. Values below 1 are ignored.
func MaxDepth(depth int) Option {
	return func(it *Iterator) {
		if depth > 0 {
			it.maxDepth = depth
		}
	}
}

type frame struct {
	arc       Arc
	visited   bool
	descended bool
}

// Iterator enumerates stored sequences depth first. Use it like a
// bufio.Scanner:
//
//	it := a.Sequences()
//	for it.Next() {
//		fmt.Println(string(it.Bytes()))
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	fsa      *Automaton
	stack    []frame
	path     []byte
	current  []byte
	maxDepth int
	err      error
}

// Sequences returns an iterator over every sequence accepted from the start
// node.
func (a *Automaton) Sequences(opts ...Option) *Iterator {
	return a.SequencesFrom(a.start, opts...)
}

// SequencesFrom returns an iterator over every path from node n that ends
// at a final arc. The yielded sequences do not include the path to n.
func (a *Automaton) SequencesFrom(n Node, opts ...Option) *Iterator {
	it := &Iterator{
		fsa:      a,
		stack:    make([]frame, 0, 16),
		path:     make([]byte, 0, 64),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(it)
	}
	if first, ok := a.FirstArc(n); ok {
		it.stack = append(it.stack, frame{arc: first})
	}
	return it
}

// Next advances to the next sequence. It returns false when the enumeration
// is exhausted or has failed.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}

	a := it.fsa
	for len(it.stack) > 0 {
		depth := len(it.stack) - 1
		top := &it.stack[depth]

		if !top.visited {
			top.visited = true
			it.path = append(it.path[:depth], a.Label(top.arc))
			if a.IsFinal(top.arc) {
				it.current = it.path
				return true
			}
			continue
		}

		if !top.descended {
			top.descended = true
			if !a.IsTerminal(top.arc) {
				if len(it.stack) >= it.maxDepth {
					it.err = errors.Wrapf(ErrTraversalLimit, "path longer than %d bytes, a loop in the automaton maybe?", it.maxDepth)
					it.stack = nil
					it.current = nil
					return false
				}
				if first, ok := a.FirstArc(a.Destination(top.arc)); ok {
					it.stack = append(it.stack, frame{arc: first})
					continue
				}
			}
		}

		if next, ok := a.NextArc(top.arc); ok {
			*top = frame{arc: next}
			continue
		}
		it.stack = it.stack[:depth]
	}

	it.current = nil
	return false
}

// Bytes returns the current sequence. The slice is reused by the next call
// to Next.
func (it *Iterator) Bytes() []byte {
	return it.current
}

// Err returns the error that stopped the enumeration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Collect enumerates every sequence into a new slice.
func (a *Automaton) Collect(opts ...Option) ([][]byte, error) {
	var out [][]byte
	it := a.Sequences(opts...)
	for it.Next() {
		out = append(out, append([]byte(nil), it.Bytes()...))
	}
	return out, it.Err()
}
