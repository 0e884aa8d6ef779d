package fsa

import (
	"io"

	"github.com/pkg/errors"
)

type bitWriter struct {
	io.Writer
	cache uint8
	used  int
	err   error
}

// newBitWriter creates a new bitWriter from an io writer.
func newBitWriter(w io.Writer) *bitWriter {
	return &bitWriter{Writer: w}
}

// WriteBits writes the low n bits of data, most significant first. Once a
// write fails, every later call returns the same error.
func (w *bitWriter) WriteBits(data uint64, n int) error {
	if w.err != nil {
		return w.err
	}

	var mask uint8
	for n > 0 {
		written := n
		if written+w.used > 8 {
			written = 8 - w.used
		}

		mask = uint8(uint16(1<<(written)) - 1)
		w.used += written
		w.cache = (w.cache << written) | byte(data>>(n-written))&mask

		if w.used == 8 {
			if _, err := w.Write([]byte{w.cache}); err != nil {
				w.err = err
				return err
			}
			w.used = 0
			w.cache = 0
		}

		n -= written
	}
	return nil
}

func (w *bitWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.used > 0 {
		if _, err := w.Write([]byte{w.cache << (8 - w.used)}); err != nil {
			w.err = err
			return err
		}
		w.used = 0
		w.cache = 0
	}
	return nil
}

var maskTop = []byte{
	0xff,
	0x7f,
	0x3f,
	0x1f,
	0x0f,
	0x07,
	0x03,
	0x01,
	0x00,
}

// bitSeeker reads bits from a given offset in bits. Reading past size
// records io.ErrUnexpectedEOF; callers check Err once after a batch of reads.
type bitSeeker struct {
	io.ReaderAt
	p      int64
	size   int64
	buffer []byte
	err    error
}

// newBitSeeker creates a bitSeeker over the first size bytes of r.
func newBitSeeker(r io.ReaderAt, size int64) *bitSeeker {
	return &bitSeeker{ReaderAt: r, size: size, buffer: make([]byte, 1)}
}

func (r *bitSeeker) nextByte() byte {
	if r.err != nil {
		return 0
	}
	at := r.p >> 3
	if at >= r.size {
		r.err = io.ErrUnexpectedEOF
		return 0
	}
	if n, err := r.ReadAt(r.buffer, at); n != 1 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0
	}
	return r.buffer[0]
}

func (r *bitSeeker) ReadBits(n int64) uint64 {
	if n == 0 {
		return 0
	}

	if r.p&7+n <= 8 {
		ret := uint64((r.nextByte() & maskTop[r.p&7]) >> (8 - r.p&7 - n))
		r.p += n
		return ret
	}

	// case 2: bits lie incompletely in the given byte
	var result uint64
	result = uint64((r.nextByte() & maskTop[r.p&7]))

	l := 8 - r.p&7
	r.p += l
	n -= l

	for n >= 8 {
		result = (result << 8) | uint64(r.nextByte())
		r.p += 8
		n -= 8
	}

	if n > 0 {
		result = (result << n) | uint64(r.nextByte()>>(8-n))
		r.p += n
	}

	return result
}

func (r *bitSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.p = offset
	case io.SeekCurrent:
		r.p += offset
	default:
		return r.p, errors.Errorf("bitSeeker: whence=%d not supported", whence)
	}
	return r.p, nil
}

func (r *bitSeeker) Tell() int64 {
	return r.p
}

// Err returns the first read error, if any.
func (r *bitSeeker) Err() error {
	return r.err
}
