package fsa

import (
	"sort"
)

// Node is a state of the automaton. It is the index of the node's first arc.
type Node int

// Arc is a transition of the automaton, identified by its index.
type Arc int

// NoNode is returned by Destination for terminal arcs.
const NoNode Node = -1

// Flags describe the encoding choices made when the automaton was built.
type Flags uint8

const (
	// FlagSorted means the arcs of every node are sorted by label.
	FlagSorted Flags = 1 << iota

	// FlagNumbers means every arc stores the number of sequences that are
	// skipped by following it, which makes IndexOf available.
	FlagNumbers
)

func (f Flags) String() string {
	s := ""
	if f&FlagSorted != 0 {
		s += "SORTED,"
	}
	if f&FlagNumbers != 0 {
		s += "NUMBERS,"
	}
	if s == "" {
		return "(none)"
	}
	return s[:len(s)-1]
}

const (
	arcFinal uint8 = 1 << iota
	arcLast
	arcTerminal
)

// Automaton is a decoded, immutable automaton.
type Automaton struct {
	version   byte
	flags     Flags
	filler    byte
	separator byte
	numNodes  int
	start     Node

	labels  []byte
	bits    []uint8
	targets []uint32
	counts  []uint32 // nil without FlagNumbers

	// last[i] is the index of the last arc of the node arc i belongs to.
	last   []uint32
	sorted bool
}

// Version returns the format version tag.
func (a *Automaton) Version() byte { return a.version }

// Flags returns the build flags.
func (a *Automaton) Flags() Flags { return a.flags }

// NumArcs returns the total number of arcs.
func (a *Automaton) NumArcs() int { return len(a.labels) }

// NumNodes returns the total number of nodes.
func (a *Automaton) NumNodes() int { return a.numNodes }

// Filler returns the filler byte.
func (a *Automaton) Filler() byte { return a.filler }

// AnnotationSeparator returns the byte used to separate fields of a sequence.
func (a *Automaton) AnnotationSeparator() byte { return a.separator }

// Sorted reports whether arc labels are known to be sorted within every node.
// It is only true when FlagSorted was set and the arcs were checked at load.
func (a *Automaton) Sorted() bool { return a.sorted }

// StartNode returns the node all searches begin from.
func (a *Automaton) StartNode() Node { return a.start }

// FirstArc returns the first outgoing arc of node n.
func (a *Automaton) FirstArc(n Node) (Arc, bool) {
	if n < 0 || int(n) >= len(a.labels) {
		return 0, false
	}
	return Arc(n), true
}

// NextArc returns the arc following arc in its node's arc list.
func (a *Automaton) NextArc(arc Arc) (Arc, bool) {
	if a.bits[arc]&arcLast != 0 {
		return 0, false
	}
	return arc + 1, true
}

// IsFinal reports whether reaching arc completes a stored sequence.
func (a *Automaton) IsFinal(arc Arc) bool { return a.bits[arc]&arcFinal != 0 }

// IsTerminal reports whether arc has no destination node.
func (a *Automaton) IsTerminal(arc Arc) bool { return a.bits[arc]&arcTerminal != 0 }

// IsLast reports whether arc is the last arc of its node.
func (a *Automaton) IsLast(arc Arc) bool { return a.bits[arc]&arcLast != 0 }

// Label returns the label byte of arc.
func (a *Automaton) Label(arc Arc) byte { return a.labels[arc] }

// Destination returns the node arc leads to, or NoNode for terminal arcs.
func (a *Automaton) Destination(arc Arc) Node {
	if a.IsTerminal(arc) {
		return NoNode
	}
	return Node(a.targets[arc])
}

// ArcFor finds the arc of node n labelled label.
func (a *Automaton) ArcFor(n Node, label byte) (Arc, bool) {
	first, ok := a.FirstArc(n)
	if !ok {
		return 0, false
	}

	if a.sorted {
		lo, hi := int(first), int(a.last[first])+1
		i := lo + sort.Search(hi-lo, func(i int) bool {
			return a.labels[lo+i] >= label
		})
		if i < hi && a.labels[i] == label {
			return Arc(i), true
		}
		return 0, false
	}

	for arc, ok := first, true; ok; arc, ok = a.NextArc(arc) {
		if a.labels[arc] == label {
			return arc, true
		}
	}
	return 0, false
}

// Follow walks seq from node n and returns the arc that consumed the last
// byte. It fails if seq is empty or leaves the automaton.
func (a *Automaton) Follow(n Node, seq []byte) (Arc, bool) {
	var arc Arc
	for i, b := range seq {
		if i > 0 {
			if a.IsTerminal(arc) {
				return 0, false
			}
			n = a.Destination(arc)
		}
		var ok bool
		if arc, ok = a.ArcFor(n, b); !ok {
			return 0, false
		}
	}
	return arc, len(seq) > 0
}

// Contains reports whether seq is stored in the automaton.
func (a *Automaton) Contains(seq []byte) bool {
	arc, ok := a.Follow(a.start, seq)
	return ok && a.IsFinal(arc)
}

// IndexOf returns the position of seq in enumeration order, or -1 if seq is
// not stored or the automaton was built without FlagNumbers.
func (a *Automaton) IndexOf(seq []byte) int {
	if a.counts == nil || len(seq) == 0 {
		return -1
	}

	index := 0
	n := a.start
	for i, b := range seq {
		arc, ok := a.ArcFor(n, b)
		if !ok {
			return -1
		}
		index += int(a.counts[arc])

		if i == len(seq)-1 {
			if a.IsFinal(arc) {
				return index
			}
			return -1
		}

		// the sequence ending at this arc comes before its continuations
		if a.IsFinal(arc) {
			index++
		}
		if a.IsTerminal(arc) {
			return -1
		}
		n = a.Destination(arc)
	}
	return -1
}
