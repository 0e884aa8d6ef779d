package fsa

import (
	"bytes"
	"io"
	"math/bits"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

/* FILE FORMAT
- 4 bytes: magic "\fsa"
- 1 byte: version
- 1 byte: flags
- 1 byte: filler byte
- 1 byte: annotation separator byte
- 1 byte: abits, bits per destination address (1..32)
- 1 byte: wbits, bits per skip count (0 unless FlagNumbers)
- 7code: number of nodes
- 7code: number of arcs
- 7code: start node, as the index of its first arc
- for each arc, bit packed with no padding:
	8 bits: label
	1 bit: final?
	1 bit: last arc of its node?
	1 bit: terminal?
	abits: index of the first arc of the destination node (0 if terminal)
	wbits: number of sequences skipped by following this arc
- zero bits up to the next byte boundary

The arcs of one node are stored next to each other, so a node is simply the
index of its first arc.

We define 7code to be an unsigned that can be read the following way:

result = 0
for {
	data = next 8 bits
	result = result << 7 | data & 0x7f
	if data & 0x80 == 0 break
}

*/

const (
	// Magic is the first four bytes of every automaton file.
	Magic uint32 = '\\'<<24 | 'f'<<16 | 's'<<8 | 'a'

	// Version is the only format version this package reads and writes.
	Version byte = 1

	headerLen   = 4 + 6
	arcBaseBits = 8 + 3
	maxAddrBits = 32
)

// Load decodes the automaton stored in a file. The file is memory mapped
// while it is decoded and closed before returning.
func Load(filename string) (*Automaton, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "fsa: opening %s", filename)
	}
	defer f.Close()

	return Read(f, int64(f.Len()))
}

// FromBytes decodes an automaton held in memory.
func FromBytes(data []byte) (*Automaton, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read decodes an automaton occupying exactly size bytes of r.
func Read(r io.ReaderAt, size int64) (*Automaton, error) {
	if size < headerLen+3 {
		return nil, formatErrorf("truncated header (%d bytes)", size)
	}

	s := newBitSeeker(r, size)
	if magic := uint32(s.ReadBits(32)); s.Err() == nil && magic != Magic {
		return nil, formatErrorf("bad magic %08x", magic)
	}

	a := &Automaton{}
	a.version = byte(s.ReadBits(8))
	a.flags = Flags(s.ReadBits(8))
	a.filler = byte(s.ReadBits(8))
	a.separator = byte(s.ReadBits(8))
	abits := int64(s.ReadBits(8))
	wbits := int64(s.ReadBits(8))
	numNodes, ok1 := readUnsigned(s)
	numArcs, ok2 := readUnsigned(s)
	start, ok3 := readUnsigned(s)

	if err := s.Err(); err != nil {
		return nil, &FormatError{Reason: "reading header", Err: err}
	}
	if !ok1 || !ok2 || !ok3 {
		return nil, formatErrorf("header count overflows")
	}
	if a.version != Version {
		return nil, formatErrorf("unsupported version %d", a.version)
	}
	if a.flags&^(FlagSorted|FlagNumbers) != 0 {
		return nil, formatErrorf("unknown flags %08b", a.flags)
	}
	if abits == 0 || abits > maxAddrBits {
		return nil, formatErrorf("invalid address width %d", abits)
	}
	if wbits > maxAddrBits || (wbits > 0 && a.flags&FlagNumbers == 0) {
		return nil, formatErrorf("invalid count width %d", wbits)
	}

	arcBits := arcBaseBits + abits + wbits
	if numArcs > uint64(size)*8/uint64(arcBits) || numNodes > numArcs {
		return nil, formatErrorf("%d arcs and %d nodes do not fit in %d bytes", numArcs, numNodes, size)
	}
	if expected := (s.Tell() + int64(numArcs)*arcBits + 7) / 8; expected != size {
		return nil, formatErrorf("%d arcs need %d bytes, got %d", numArcs, expected, size)
	}

	n := int(numArcs)
	a.numNodes = int(numNodes)
	a.start = Node(start)
	a.labels = make([]byte, n)
	a.bits = make([]uint8, n)
	a.targets = make([]uint32, n)
	if a.flags&FlagNumbers != 0 {
		a.counts = make([]uint32, n)
	}

	for i := 0; i < n; i++ {
		a.labels[i] = byte(s.ReadBits(8))
		a.bits[i] = flagsFromWire(uint8(s.ReadBits(3)))
		a.targets[i] = uint32(s.ReadBits(abits))
		if wbits > 0 {
			a.counts[i] = uint32(s.ReadBits(wbits))
		}
	}
	if err := s.Err(); err != nil {
		return nil, &FormatError{Reason: "reading arcs", Err: err}
	}

	if err := a.index(); err != nil {
		return nil, err
	}

	return a, nil
}

// flagsFromWire maps the three wire bits (final, last, terminal, most
// significant first) to the in-memory arc bits.
func flagsFromWire(wire uint8) uint8 {
	var b uint8
	if wire&4 != 0 {
		b |= arcFinal
	}
	if wire&2 != 0 {
		b |= arcLast
	}
	if wire&1 != 0 {
		b |= arcTerminal
	}
	return b
}

// index checks the structure of the decoded arcs and builds the last-arc
// table used by ArcFor. Loops are not detected here.
func (a *Automaton) index() error {
	a.sorted = a.flags&FlagSorted != 0
	n := len(a.labels)
	if n == 0 {
		if a.numNodes != 0 || a.start != 0 {
			return formatErrorf("empty automaton declares %d nodes, start %d", a.numNodes, a.start)
		}
		return nil
	}
	if a.bits[n-1]&arcLast == 0 {
		return formatErrorf("arc %d ends the data but is not the last arc of a node", n-1)
	}

	a.last = make([]uint32, n)
	nodes := 0
	last := uint32(n - 1)
	for i := n - 1; i >= 0; i-- {
		if a.bits[i]&arcLast != 0 {
			last = uint32(i)
			nodes++
		}
		a.last[i] = last
	}
	if nodes != a.numNodes {
		return formatErrorf("found %d nodes, header declares %d", nodes, a.numNodes)
	}

	isNode := func(i uint64) bool {
		return i < uint64(n) && (i == 0 || a.bits[i-1]&arcLast != 0)
	}
	if !isNode(uint64(a.start)) {
		return formatErrorf("start node %d is not a node", a.start)
	}

	for i := 0; i < n; i++ {
		if a.bits[i]&arcTerminal == 0 && !isNode(uint64(a.targets[i])) {
			return formatErrorf("arc %d points to %d, which is not a node", i, a.targets[i])
		}
		if a.sorted && a.bits[i]&arcLast == 0 && a.labels[i] >= a.labels[i+1] {
			a.sorted = false
		}
	}
	return nil
}

// Save writes the automaton to a file. Returns the number of bytes written.
func (a *Automaton) Save(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}

	n, err := a.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// WriteTo writes the automaton in the format described at the top of this
// file. Returns the number of bytes written.
func (a *Automaton) WriteTo(wIn io.Writer) (int64, error) {
	n := len(a.labels)

	abits := bits.Len(uint(n))
	if abits == 0 {
		abits = 1
	}
	if abits > maxAddrBits {
		return 0, errors.Errorf("fsa: %d arcs cannot be addressed", n)
	}

	wbits := 0
	flags := a.flags &^ FlagNumbers
	if a.counts != nil {
		flags |= FlagNumbers
		var maxCount uint32
		for _, c := range a.counts {
			if c > maxCount {
				maxCount = c
			}
		}
		wbits = bits.Len32(maxCount)
		if wbits == 0 {
			wbits = 1
		}
	}

	var header bytes.Buffer
	hw := newBitWriter(&header)
	hw.WriteBits(uint64(Magic), 32)
	hw.WriteBits(uint64(Version), 8)
	hw.WriteBits(uint64(flags), 8)
	hw.WriteBits(uint64(a.filler), 8)
	hw.WriteBits(uint64(a.separator), 8)
	hw.WriteBits(uint64(abits), 8)
	hw.WriteBits(uint64(wbits), 8)
	writeUnsigned(hw, uint64(a.numNodes))
	writeUnsigned(hw, uint64(n))
	writeUnsigned(hw, uint64(a.start))

	cw := &countingWriter{w: wIn}
	if _, err := cw.Write(header.Bytes()); err != nil {
		return cw.n, err
	}

	w := newBitWriter(cw)
	for i := 0; i < n; i++ {
		w.WriteBits(uint64(a.labels[i]), 8)
		w.WriteBits(boolBit(a.bits[i]&arcFinal), 1)
		w.WriteBits(boolBit(a.bits[i]&arcLast), 1)
		w.WriteBits(boolBit(a.bits[i]&arcTerminal), 1)
		if a.bits[i]&arcTerminal != 0 {
			w.WriteBits(0, abits)
		} else {
			w.WriteBits(uint64(a.targets[i]), abits)
		}
		if wbits > 0 {
			w.WriteBits(uint64(a.counts[i]), wbits)
		}
	}
	err := w.Flush()
	return cw.n, err
}

func boolBit(b uint8) uint64 {
	if b != 0 {
		return 1
	}
	return 0
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeUnsigned writes n as a 7code, most significant group first.
func writeUnsigned(w *bitWriter, n uint64) {
	var groups [10]byte
	i := len(groups) - 1
	groups[i] = byte(n & 0x7f)
	for n >>= 7; n > 0; n >>= 7 {
		i--
		groups[i] = byte(n&0x7f) | 0x80
	}
	for _, g := range groups[i:] {
		w.WriteBits(uint64(g), 8)
	}
}

// readUnsigned reads a 7code. It returns false if the value overflows.
func readUnsigned(r *bitSeeker) (uint64, bool) {
	var result uint64
	for i := 0; i < 10; i++ {
		d := r.ReadBits(8)
		if result>>57 != 0 {
			return 0, false
		}
		result = (result << 7) | d&0x7f
		if d&0x80 == 0 || r.Err() != nil {
			return result, true
		}
	}
	return 0, false
}
