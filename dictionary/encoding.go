package dictionary

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// codec converts between Go strings and the bytes stored in an automaton.
type codec struct {
	name string
	enc  encoding.Encoding

	utf8       bool
	singleByte bool
}

func lookupCodec(name string) (*codec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("no encoding named")
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		if enc, err = htmlindex.Get(name); err != nil {
			return nil, errors.Wrapf(err, "unsupported encoding %q", name)
		}
	}

	c := &codec{name: name, enc: enc}
	switch {
	case enc == unicode.UTF8, strings.EqualFold(name, "utf-8"), strings.EqualFold(name, "utf8"):
		c.utf8 = true
	default:
		_, c.singleByte = enc.(*charmap.Charmap)
	}
	return c, nil
}

func (c *codec) encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, &EncodingError{Encoding: c.name, Data: []byte(s), Err: errors.New("invalid UTF-8 text")}
	}
	if c.utf8 {
		return []byte(s), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &EncodingError{Encoding: c.name, Data: []byte(s), Err: err}
	}
	return out, nil
}

// decode is strict: bytes that do not map to a character are reported
// instead of being replaced with U+FFFD.
func (c *codec) decode(raw []byte) (string, error) {
	if c.utf8 {
		if !utf8.Valid(raw) {
			return "", &EncodingError{Encoding: c.name, Data: raw, Err: errors.New("malformed UTF-8")}
		}
		return string(raw), nil
	}

	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &EncodingError{Encoding: c.name, Data: raw, Err: err}
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		// a genuine U+FFFD encodes back to the same bytes
		back, err := c.enc.NewEncoder().Bytes(out)
		if err != nil || !bytes.Equal(back, raw) {
			return "", &EncodingError{Encoding: c.name, Data: raw, Err: errors.New("unmappable input")}
		}
	}
	return string(out), nil
}

// complete reports whether p holds at least one whole encoded character.
func (c *codec) complete(p []byte) bool {
	switch {
	case len(p) == 0:
		return false
	case c.singleByte:
		return true
	case c.utf8:
		return utf8.FullRune(p)
	}

	var dst [16]byte
	_, _, err := c.enc.NewDecoder().Transform(dst[:], p, false)
	return err != transform.ErrShortSrc
}
