// Package dictionary pairs an automaton with the metadata needed to turn its
// byte sequences into words.
//
// A dictionary file slownik.dict is described by slownik.info, which names
// the text encoding, the separator between the fields of an entry and the
// compression used for base forms. Without a descriptor the dictionary is
// Plain: words are matched and returned as raw bytes.
package dictionary

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smhanov/fsa"
)

// Kind tells whether a dictionary has metadata.
type Kind int

const (
	// Plain dictionaries have no descriptor: no decoding, no fields.
	Plain Kind = iota

	// WithFeatures dictionaries decode entries through their Features.
	WithFeatures
)

func (k Kind) String() string {
	if k == WithFeatures {
		return "with features"
	}
	return "plain"
}

// Dictionary is an automaton plus its Features. It is immutable and safe for
// concurrent use.
type Dictionary struct {
	fsa      *fsa.Automaton
	kind     Kind
	features Features
	codec    *codec
}

// WordData is one entry of a morphological dictionary.
type WordData struct {
	Word string
	Stem string
	Tag  string
}

// New creates a dictionary. A nil features makes a Plain dictionary. An
// unknown encoding is an error.
func New(a *fsa.Automaton, features *Features) (*Dictionary, error) {
	d := &Dictionary{fsa: a}
	if features == nil {
		return d, nil
	}

	c, err := lookupCodec(features.Encoding)
	if err != nil {
		return nil, errors.Wrapf(ErrFeatures, "%v", err)
	}
	d.kind = WithFeatures
	d.features = *features
	d.codec = c
	return d, nil
}

// Load opens an automaton file and the descriptor next to it, if any.
func Load(path string) (*Dictionary, error) {
	a, err := fsa.Load(path)
	if err != nil {
		return nil, err
	}

	infoPath := FeaturesPath(path)
	features, err := LoadFeatures(infoPath)
	if os.IsNotExist(errors.Cause(err)) {
		logrus.WithField("path", path).Warn("automaton without metadata file, raw bytes emitted")
		return New(a, nil)
	} else if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"path":     path,
		"encoding": features.Encoding,
		"arcs":     a.NumArcs(),
	}).Debug("loaded dictionary")
	return New(a, features)
}

// Read decodes an automaton of the given size from r and, if features is not
// nil, a descriptor from features.
func Read(r io.ReaderAt, size int64, features io.Reader) (*Dictionary, error) {
	a, err := fsa.Read(r, size)
	if err != nil {
		return nil, err
	}
	if features == nil {
		return New(a, nil)
	}
	f, err := ReadFeatures(features)
	if err != nil {
		return nil, err
	}
	return New(a, f)
}

// Automaton returns the underlying automaton.
func (d *Dictionary) Automaton() *fsa.Automaton { return d.fsa }

// Kind returns Plain or WithFeatures.
func (d *Dictionary) Kind() Kind { return d.kind }

// Features returns the metadata. It is the zero value for Plain dictionaries.
func (d *Dictionary) Features() Features { return d.features }

// Separator returns the field separator, or 0 if there is none.
func (d *Dictionary) Separator() byte { return d.features.Separator }

// Encode converts a word to the bytes stored in the automaton.
func (d *Dictionary) Encode(word string) ([]byte, error) {
	if d.kind == Plain {
		return []byte(word), nil
	}
	return d.codec.encode(word)
}

// EncodeRunes encodes every character of word separately.
func (d *Dictionary) EncodeRunes(word string) ([][]byte, error) {
	out := make([][]byte, 0, len(word))
	if d.kind == Plain {
		for i := 0; i < len(word); i++ {
			out = append(out, []byte{word[i]})
		}
		return out, nil
	}
	for _, r := range word {
		b, err := d.codec.encode(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode converts stored bytes to text. Plain dictionaries return the bytes
// unchanged.
func (d *Dictionary) Decode(raw []byte) (string, error) {
	if d.kind == Plain {
		return string(raw), nil
	}
	return d.codec.decode(raw)
}

// CharComplete reports whether p holds at least one whole character. In a
// Plain dictionary every byte is a character.
func (d *Dictionary) CharComplete(p []byte) bool {
	if d.kind == Plain {
		return len(p) > 0
	}
	return d.codec.complete(p)
}

// Fields splits a stored sequence at the separator.
func (d *Dictionary) Fields(raw []byte) [][]byte {
	if d.features.Separator == 0 {
		return [][]byte{raw}
	}
	return bytes.Split(raw, []byte{d.features.Separator})
}

// IsWordEnd reports whether the path ending with arc spells a whole word:
// the arc is final, or it is followed by the separator.
func (d *Dictionary) IsWordEnd(arc fsa.Arc) bool {
	if d.fsa.IsFinal(arc) {
		return true
	}
	if d.features.Separator == 0 || d.fsa.IsTerminal(arc) {
		return false
	}
	_, ok := d.fsa.ArcFor(d.fsa.Destination(arc), d.features.Separator)
	return ok
}

// Contains reports whether word is in the dictionary. Words that cannot be
// encoded, or that contain the separator, are never found.
func (d *Dictionary) Contains(word string) bool {
	seq, err := d.Encode(word)
	if err != nil {
		return false
	}
	return d.containsBytes(seq)
}

func (d *Dictionary) containsBytes(seq []byte) bool {
	sep := d.features.Separator
	if len(seq) == 0 || (sep != 0 && bytes.IndexByte(seq, sep) >= 0) {
		return false
	}
	arc, ok := d.fsa.Follow(d.fsa.StartNode(), seq)
	return ok && d.IsWordEnd(arc)
}

// Lookup returns the entries stored for word. For dictionaries without a
// separator the only entry is the word itself. Base forms are decompressed
// according to the dictionary's features.
func (d *Dictionary) Lookup(word string) ([]WordData, error) {
	seq, err := d.Encode(word)
	if err != nil {
		return nil, err
	}
	if !d.containsBytes(seq) {
		return nil, nil
	}

	var results []WordData
	a := d.fsa
	arc, _ := a.Follow(a.StartNode(), seq)
	if a.IsFinal(arc) {
		results = append(results, WordData{Word: word})
	}

	sep := d.features.Separator
	if sep == 0 || a.IsTerminal(arc) {
		return results, nil
	}
	sepArc, ok := a.ArcFor(a.Destination(arc), sep)
	if !ok {
		return results, nil
	}
	if a.IsFinal(sepArc) {
		results = append(results, WordData{Word: word})
	}
	if a.IsTerminal(sepArc) {
		return results, nil
	}

	it := a.SequencesFrom(a.Destination(sepArc))
	for it.Next() {
		entry, err := d.entry(word, seq, it.Bytes())
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, it.Err()
}

func (d *Dictionary) entry(word string, seq, rest []byte) (WordData, error) {
	data := WordData{Word: word}
	stemCode, tag := rest, []byte(nil)
	if i := bytes.IndexByte(rest, d.features.Separator); i >= 0 {
		stemCode, tag = rest[:i], rest[i+1:]
	}

	stem, err := Decompress(seq, stemCode, d.features)
	if err != nil {
		return data, errors.Wrapf(err, "entry for %q", word)
	}
	if data.Stem, err = d.Decode(stem); err != nil {
		return data, err
	}
	if data.Tag, err = d.Decode(tag); err != nil {
		return data, err
	}
	return data, nil
}
