package dictionary

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Keys of the metadata descriptor.
const (
	KeyEncoding     = "fsa.dict.encoding"
	KeySeparator    = "fsa.dict.separator"
	KeyUsesPrefixes = "fsa.dict.uses-prefixes"
	KeyUsesInfixes  = "fsa.dict.uses-infixes"
)

// FeaturesExtension is the extension of a metadata descriptor. It replaces
// the extension of the automaton file it describes.
const FeaturesExtension = ".info"

// Features is the metadata that accompanies an automaton.
type Features struct {
	// Encoding names the charset of the stored bytes, e.g. "iso-8859-2".
	Encoding string

	// Separator splits a stored sequence into fields (word, stem, tag).
	// Zero means the whole sequence is the word.
	Separator byte

	UsesPrefixes bool
	UsesInfixes  bool
}

// FeaturesPath returns the descriptor name expected for an automaton file:
// slownik.dict is described by slownik.info.
func FeaturesPath(fsaPath string) string {
	return strings.TrimSuffix(fsaPath, filepath.Ext(fsaPath)) + FeaturesExtension
}

// LoadFeatures reads a descriptor file.
func LoadFeatures(path string) (*Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	features, err := ReadFeatures(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return features, nil
}

// ReadFeatures parses a descriptor in Java properties syntax. The separator
// is given as text and converted with the declared encoding.
func ReadFeatures(r io.Reader) (*Features, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, errors.Wrapf(ErrFeatures, "%v", err)
	}

	f := &Features{Encoding: props.GetString(KeyEncoding, "")}
	c, err := lookupCodec(f.Encoding)
	if err != nil {
		return nil, errors.Wrapf(ErrFeatures, "%s: %v", KeyEncoding, err)
	}

	if sep := props.GetString(KeySeparator, ""); sep != "" {
		raw, err := c.encode(sep)
		if err != nil || len(raw) != 1 {
			return nil, errors.Wrapf(ErrFeatures, "%s %q is not a single byte in %s", KeySeparator, sep, f.Encoding)
		}
		f.Separator = raw[0]
	}

	if f.UsesPrefixes, err = parseBool(props, KeyUsesPrefixes); err != nil {
		return nil, err
	}
	if f.UsesInfixes, err = parseBool(props, KeyUsesInfixes); err != nil {
		return nil, err
	}
	return f, nil
}

func parseBool(props *properties.Properties, key string) (bool, error) {
	v, ok := props.Get(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(ErrFeatures, "%s=%q", key, v)
	}
	return b, nil
}

// WriteTo writes f in the syntax ReadFeatures accepts.
func (f *Features) WriteTo(w io.Writer) (int64, error) {
	c, err := lookupCodec(f.Encoding)
	if err != nil {
		return 0, errors.Wrapf(ErrFeatures, "%s: %v", KeyEncoding, err)
	}

	p := properties.NewProperties()
	p.DisableExpansion = true
	values := [][2]string{{KeyEncoding, f.Encoding}}
	if f.Separator != 0 {
		sep, err := c.decode([]byte{f.Separator})
		if err != nil {
			return 0, err
		}
		values = append(values, [2]string{KeySeparator, sep})
	}
	values = append(values,
		[2]string{KeyUsesPrefixes, strconv.FormatBool(f.UsesPrefixes)},
		[2]string{KeyUsesInfixes, strconv.FormatBool(f.UsesInfixes)})
	for _, kv := range values {
		if _, _, err := p.Set(kv[0], kv[1]); err != nil {
			return 0, err
		}
	}

	n, err := p.Write(w, properties.UTF8)
	return int64(n), err
}
