package dictionary

import (
	"github.com/pkg/errors"
)

// Decompress rebuilds a compressed entry field (usually the base form) from
// the previous entry it was coded against, normally the word itself. Every
// count is stored as one byte, 'A' meaning zero:
//
//	suffix only:   K tail       previous[:len-K] + tail
//	with prefixes: P K tail     previous[P:len-K] + tail
//	with infixes:  I L K tail   previous[:I] + previous[I+L:len-K] + tail
//
// Infix coding implies prefix coding when both flags are set.
func Decompress(previous, raw []byte, f Features) ([]byte, error) {
	codes := 1
	switch {
	case f.UsesInfixes:
		codes = 3
	case f.UsesPrefixes:
		codes = 2
	}
	if len(raw) < codes {
		return nil, errors.Wrapf(ErrMalformedEntry, "code %q is shorter than %d bytes", raw, codes)
	}

	counts := make([]int, codes)
	for i := range counts {
		if raw[i] < 'A' {
			return nil, errors.Wrapf(ErrMalformedEntry, "count byte %q", raw[i])
		}
		counts[i] = int(raw[i] - 'A')
	}
	tail := raw[codes:]

	n := len(previous)
	var out []byte
	switch codes {
	case 1:
		k := counts[0]
		if k > n {
			return nil, errors.Wrapf(ErrMalformedEntry, "strip %d bytes from %q", k, previous)
		}
		out = append(out, previous[:n-k]...)
	case 2:
		p, k := counts[0], counts[1]
		if p+k > n {
			return nil, errors.Wrapf(ErrMalformedEntry, "strip %d+%d bytes from %q", p, k, previous)
		}
		out = append(out, previous[p:n-k]...)
	case 3:
		i, l, k := counts[0], counts[1], counts[2]
		if i+l+k > n {
			return nil, errors.Wrapf(ErrMalformedEntry, "strip %d+%d+%d bytes from %q", i, l, k, previous)
		}
		out = append(out, previous[:i]...)
		out = append(out, previous[i+l:n-k]...)
	}
	return append(out, tail...), nil
}
