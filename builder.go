package fsa

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const rootNode = 0

type edge struct {
	label byte
	node  int
}

type buildNode struct {
	edges []edge
	final bool
}

type uncheckedNode struct {
	parent int
	label  byte
	child  int
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// WithNumbers stores per-arc skip counts so that IndexOf works.
func WithNumbers() BuildOption {
	return func(b *Builder) { b.numbers = true }
}

// WithFiller sets the filler byte recorded in the header.
func WithFiller(filler byte) BuildOption {
	return func(b *Builder) { b.filler = filler }
}

// WithAnnotationSeparator sets the annotation separator recorded in the header.
func WithAnnotationSeparator(sep byte) BuildOption {
	return func(b *Builder) { b.separator = sep }
}

// Builder creates a minimal automaton from sequences added in strictly
// increasing byte order.
type Builder struct {
	// these are erased after we finish building
	lastSeq        []byte
	nodes          []buildNode
	uncheckedNodes []uncheckedNode
	minimizedNodes map[string]int

	numAdded  int
	numbers   bool
	filler    byte
	separator byte
	result    *Automaton
}

// NewBuilder creates a new Builder.
func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{
		nodes:          []buildNode{{}},
		minimizedNodes: make(map[string]int),
		filler:         '_',
		separator:      '+',
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CanAdd returns true if seq can be added to the Builder.
func (b *Builder) CanAdd(seq []byte) bool {
	return b.result == nil && len(seq) > 0 &&
		(b.numAdded == 0 || bytes.Compare(seq, b.lastSeq) > 0)
}

// NumAdded returns the number of sequences added so far.
func (b *Builder) NumAdded() int {
	return b.numAdded
}

// AddString adds a string, using its bytes as the sequence.
func (b *Builder) AddString(s string) error {
	return b.Add([]byte(s))
}

// Add adds a sequence to the automaton.
func (b *Builder) Add(seq []byte) error {
	switch {
	case b.result != nil:
		return ErrFinished
	case len(seq) == 0:
		return ErrEmptySequence
	case b.numAdded > 0 && bytes.Compare(seq, b.lastSeq) <= 0:
		return errors.Wrapf(ErrOutOfOrder, "%q after %q", seq, b.lastSeq)
	}

	// find common prefix between seq and the previous one
	commonPrefix := 0
	for i := 0; i < min(len(seq), len(b.lastSeq)); i++ {
		if seq[i] != b.lastSeq[i] {
			break
		}
		commonPrefix++
	}

	// Check the uncheckedNodes for redundant nodes, proceeding from last
	// one down to the common prefix size. Then truncate the list at that
	// point.
	b.minimize(commonPrefix)

	// add the suffix, starting from the correct node mid-way through the
	// graph
	node := rootNode
	if len(b.uncheckedNodes) > 0 {
		node = b.uncheckedNodes[len(b.uncheckedNodes)-1].child
	}

	for _, label := range seq[commonPrefix:] {
		next := len(b.nodes)
		b.nodes = append(b.nodes, buildNode{})
		b.nodes[node].edges = append(b.nodes[node].edges, edge{label, next})
		b.uncheckedNodes = append(b.uncheckedNodes, uncheckedNode{node, label, next})
		node = next
	}

	b.nodes[node].final = true
	b.lastSeq = append(b.lastSeq[:0], seq...)
	b.numAdded++
	return nil
}

func (b *Builder) minimize(downTo int) {
	// proceed from the leaf up to a certain point
	for i := len(b.uncheckedNodes) - 1; i >= downTo; i-- {
		u := b.uncheckedNodes[i]
		name := b.nameOf(u.child)
		if node, ok := b.minimizedNodes[name]; ok {
			// replace the child with the previously encountered one
			edges := b.nodes[u.parent].edges
			edges[len(edges)-1].node = node
			b.nodes[u.child] = buildNode{}
		} else {
			// add the state to the minimized nodes.
			b.minimizedNodes[name] = u.child
		}
	}

	b.uncheckedNodes = b.uncheckedNodes[:downTo]
}

func (b *Builder) nameOf(node int) string {
	// node name is _label:id... for each child
	buff := bytes.Buffer{}
	for _, e := range b.nodes[node].edges {
		buff.WriteByte('_')
		buff.WriteByte(e.label)
		buff.WriteByte(':')
		buff.WriteString(strconv.Itoa(e.node))
	}

	if b.nodes[node].final {
		buff.WriteByte('!')
	}

	return buff.String()
}

// Finish minimizes the remaining nodes and lays the automaton out as arcs.
// The Builder cannot be added to afterwards; later calls return the same
// Automaton.
func (b *Builder) Finish() *Automaton {
	if b.result != nil {
		return b.result
	}

	b.minimize(0)

	// give every node with outgoing edges the index of its first arc, in
	// breadth first order so that the start node is 0
	addresses := make(map[int]int)
	var order []int
	numArcs := 0
	queue := []int{rootNode}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, ok := addresses[node]; ok || len(b.nodes[node].edges) == 0 {
			continue
		}
		addresses[node] = numArcs
		order = append(order, node)
		numArcs += len(b.nodes[node].edges)
		for _, e := range b.nodes[node].edges {
			queue = append(queue, e.node)
		}
	}

	a := &Automaton{
		version:   Version,
		flags:     FlagSorted,
		filler:    b.filler,
		separator: b.separator,
		numNodes:  len(order),
		labels:    make([]byte, 0, numArcs),
		bits:      make([]uint8, 0, numArcs),
		targets:   make([]uint32, 0, numArcs),
	}

	var reachable map[int]int
	if b.numbers {
		a.flags |= FlagNumbers
		a.counts = make([]uint32, 0, numArcs)
		reachable = make(map[int]int)
	}

	for _, node := range order {
		edges := b.nodes[node].edges
		skipped := 0
		for i, e := range edges {
			child := b.nodes[e.node]
			var flags uint8
			if child.final {
				flags |= arcFinal
			}
			if i == len(edges)-1 {
				flags |= arcLast
			}
			target := 0
			if len(child.edges) == 0 {
				flags |= arcTerminal
			} else {
				target = addresses[e.node]
			}

			a.labels = append(a.labels, e.label)
			a.bits = append(a.bits, flags)
			a.targets = append(a.targets, uint32(target))
			if b.numbers {
				a.counts = append(a.counts, uint32(skipped))
				skipped += b.countReachable(reachable, e.node)
			}
		}
	}

	if err := a.index(); err != nil {
		// the layout above always produces a valid structure
		panic(err)
	}

	b.result = a
	b.lastSeq = nil
	b.nodes = nil
	b.uncheckedNodes = nil
	b.minimizedNodes = nil
	return a
}

// countReachable returns the number of sequences that end at or below the
// edge leading into node.
func (b *Builder) countReachable(cache map[int]int, node int) int {
	if count, ok := cache[node]; ok {
		return count
	}

	count := 0
	if b.nodes[node].final {
		count++
	}
	for _, e := range b.nodes[node].edges {
		count += b.countReachable(cache, e.node)
	}

	cache[node] = count
	return count
}

// WriteTo finishes the Builder and writes the automaton to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	return b.Finish().WriteTo(w)
}
