package fsa

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitWriter(t *testing.T) {
	// write 101010 = 0x2a
	// write 010101 = 0x15
	// result: 10101001 01010000 = 0xa9 0x50
	var buffer bytes.Buffer
	bw := newBitWriter(&buffer)
	require.NoError(t, bw.WriteBits(0x2a, 6))
	require.NoError(t, bw.WriteBits(0x15, 6))
	require.NoError(t, bw.Flush())

	assert.Equal(t, []byte{0xa9, 0x50}, buffer.Bytes())
}

func TestBitReader(t *testing.T) {
	// read 101010 = 0x2a
	// read 010101 = 0x15
	buffer := bytes.NewReader([]byte{0xa9, 0x50})
	br := newBitSeeker(buffer, 2)

	assert.EqualValues(t, 0x2a, br.ReadBits(6))
	assert.EqualValues(t, 0x15, br.ReadBits(6))
	assert.EqualValues(t, 0x00, br.ReadBits(2))

	br.Seek(0, io.SeekStart)
	assert.EqualValues(t, 0xa950, br.ReadBits(16))

	br.Seek(1, io.SeekStart)
	// 0010 1001 0101 0000 = 0x2950
	assert.EqualValues(t, 0x2950, br.ReadBits(15))
	require.NoError(t, br.Err())

	_, err := br.Seek(0, io.SeekEnd)
	assert.Error(t, err)
}

func TestBitReaderPastEnd(t *testing.T) {
	br := newBitSeeker(bytes.NewReader([]byte{0xff}), 1)
	br.ReadBits(4)
	require.NoError(t, br.Err())
	br.ReadBits(8)
	assert.Equal(t, io.ErrUnexpectedEOF, br.Err())
}

func TestBitReaderWriter(t *testing.T) {
	var buffer bytes.Buffer
	bw := newBitWriter(&buffer)

	for i := 0; i < 100000; i++ {
		bits := i % 31
		data := i & ((1 << bits) - 1)
		bw.WriteBits(uint64(data), bits)
	}

	require.NoError(t, bw.Flush())

	r := bytes.NewReader(buffer.Bytes())
	br := newBitSeeker(r, int64(buffer.Len()))

	for i := 0; i < 100000; i++ {
		bits := i % 31
		data := i & ((1 << bits) - 1)

		dataRead := br.ReadBits(int64(bits))
		if int(dataRead) != data {
			t.Fatalf("Fail: %d Expected 0x%x, read 0x%x", bits, data, dataRead)
		}
	}
	require.NoError(t, br.Err())
}
