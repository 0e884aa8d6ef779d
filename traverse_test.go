package fsa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopAutomaton accepts b, ab, aab, ... through an arc that points back at
// the start node.
func loopAutomaton(t *testing.T) *Automaton {
	a := &Automaton{
		version:  Version,
		numNodes: 1,
		labels:   []byte{'b', 'a'},
		bits:     []uint8{arcFinal | arcTerminal, arcLast},
		targets:  []uint32{0, 0},
	}
	require.NoError(t, a.index())

	// loops survive a round trip; only enumeration can notice them
	var buf bytes.Buffer
	_, err := a.WriteTo(&buf)
	require.NoError(t, err)
	loaded, err := FromBytes(buf.Bytes())
	require.NoError(t, err)
	return loaded
}

func TestLoopHitsDepthGuard(t *testing.T) {
	a := loopAutomaton(t)

	it := a.Sequences(MaxDepth(10))
	count, longest := 0, 0
	for it.Next() {
		count++
		require.Equal(t, byte('b'), it.Bytes()[len(it.Bytes())-1])
		longest = max(longest, len(it.Bytes()))
	}
	assert.Equal(t, 10, count)
	assert.Equal(t, 10, longest)
	assert.ErrorIs(t, it.Err(), ErrTraversalLimit)
	assert.Nil(t, it.Bytes())

	// exact lookups are unaffected
	assert.True(t, a.Contains([]byte("aaab")))
	assert.False(t, a.Contains([]byte("aaa")))
}

func TestUnsortedArcs(t *testing.T) {
	a := &Automaton{
		version:  Version,
		flags:    FlagSorted,
		numNodes: 1,
		labels:   []byte{'z', 'a'},
		bits:     []uint8{arcFinal | arcTerminal, arcFinal | arcTerminal | arcLast},
		targets:  []uint32{0, 0},
	}
	require.NoError(t, a.index())

	// the flag is not trusted when the labels disagree
	assert.False(t, a.Sorted())
	assert.True(t, a.Contains([]byte("a")))
	assert.True(t, a.Contains([]byte("z")))
}

func TestBadDestination(t *testing.T) {
	a := &Automaton{
		version:  Version,
		numNodes: 2,
		labels:   []byte{'a', 'b', 'c'},
		bits:     []uint8{0, arcLast, arcFinal | arcTerminal | arcLast},
		targets:  []uint32{1, 0, 0},
	}
	err := a.index()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestWriteUnsigned(t *testing.T) {
	for _, n := range []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 40} {
		var buf bytes.Buffer
		w := newBitWriter(&buf)
		writeUnsigned(w, n)
		require.NoError(t, w.Flush())

		r := newBitSeeker(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		got, ok := readUnsigned(r)
		require.True(t, ok)
		assert.Equal(t, n, got)
		assert.Equal(t, int64(buf.Len())*8, r.Tell())
	}
}
