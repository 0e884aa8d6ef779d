package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/fsa"
	"github.com/smhanov/fsa/dictionary"
)

const entries = `Rzekunia+AAA+subst:sg:nom:f
Rzeczypospolitej+AAA+subst:sg:gen:f

abaka+AAA+subst:sg:nom:f
Rzekunia+AAA+subst:sg:nom:f
`

func buildDict(t *testing.T) string {
	out := filepath.Join(t.TempDir(), "test-infix.dict")
	require.NoError(t, build(strings.NewReader(entries), &buildOptions{
		output:    out,
		encoding:  "iso-8859-2",
		separator: "+",
		infixes:   true,
	}))
	return out
}

func TestBuild(t *testing.T) {
	path := buildDict(t)

	d, err := dictionary.Load(path)
	require.NoError(t, err)
	assert.Equal(t, dictionary.WithFeatures, d.Kind())
	assert.True(t, d.Features().UsesInfixes)
	assert.Equal(t, byte('+'), d.Automaton().AnnotationSeparator())

	seqs, err := d.Automaton().Collect()
	require.NoError(t, err)
	assert.Len(t, seqs, 3)

	err = build(strings.NewReader("a\n"), &buildOptions{output: path, separator: "+"})
	assert.Error(t, err)
	err = build(strings.NewReader("«…»\n"), &buildOptions{output: path, encoding: "iso-8859-2"})
	assert.ErrorIs(t, err, dictionary.ErrEncoding)
}

func TestDump(t *testing.T) {
	path := buildDict(t)

	var raw, api bytes.Buffer
	require.NoError(t, dump(&raw, path, false, fsa.DefaultMaxDepth))
	require.NoError(t, dump(&api, path, true, fsa.DefaultMaxDepth))

	for _, out := range []string{raw.String(), api.String()} {
		assert.Contains(t, out, "FSA file version    : 1\n")
		assert.Contains(t, out, "Compiled with flags : SORTED\n")
		assert.Contains(t, out, "Encoding            : iso-8859-2\n")
		assert.Contains(t, out, "Separator           : +\n")
		assert.Contains(t, out, "Uses infixes        : true\n")
		assert.Contains(t, out, "\nRzeczypospolitej+AAA+subst:sg:gen:f\nRzekunia+AAA+subst:sg:nom:f\nabaka+AAA+subst:sg:nom:f\n")
		assert.Contains(t, out, "Dictionary dumped in ")
	}

	assert.Error(t, dump(&raw, filepath.Join(t.TempDir(), "missing.dict"), false, fsa.DefaultMaxDepth))
	assert.ErrorIs(t, dump(&raw, path, false, 3), fsa.ErrTraversalLimit)
	assert.ErrorIs(t, dump(&api, path, true, 3), fsa.ErrTraversalLimit)
}

func TestDumpDepthBoundary(t *testing.T) {
	path := buildDict(t)
	longest := len("Rzeczypospolitej+AAA+subst:sg:gen:f")

	data := func(out string) string {
		start := strings.Index(out, "FSA data\n")
		end := strings.LastIndex(out, "--------------------\n")
		return out[start:end]
	}

	var raw, api bytes.Buffer
	require.NoError(t, dump(&raw, path, false, longest))
	require.NoError(t, dump(&api, path, true, longest))
	assert.Equal(t, data(raw.String()), data(api.String()))

	assert.ErrorIs(t, dump(&raw, path, false, longest-1), fsa.ErrTraversalLimit)
	assert.ErrorIs(t, dump(&api, path, true, longest-1), fsa.ErrTraversalLimit)
}

func TestDumpPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.dict")
	require.NoError(t, build(strings.NewReader("cat\ncats\n"), &buildOptions{output: path}))
	_, err := os.Stat(dictionary.FeaturesPath(path))
	assert.True(t, os.IsNotExist(err))

	var out bytes.Buffer
	require.NoError(t, dump(&out, path, false, fsa.DefaultMaxDepth))
	assert.NotContains(t, out.String(), "Dictionary metadata")
	assert.Contains(t, out.String(), "\ncat\ncats\n")
}

func TestCheck(t *testing.T) {
	path := buildDict(t)

	var out bytes.Buffer
	err := check(context.Background(), strings.NewReader("Rzekunia Rezkunia\nRzękunia\n\nRzekuniaabaka\n"), &out,
		&checkOptions{dict: path, distance: -1})
	require.NoError(t, err)
	assert.Equal(t, "Rzekunia: ok\nRezkunia: Rzekunia\nRzękunia: Rzekunia\nRzekuniaabaka: Rzekunia abaka\n", out.String())

	cfg := filepath.Join(t.TempDir(), "speller.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("max_distance = 0\n"), 0o644))
	out.Reset()
	require.NoError(t, check(context.Background(), strings.NewReader("Rezkunia"), &out,
		&checkOptions{dict: path, config: cfg, distance: -1}))
	assert.Equal(t, "Rezkunia: \n", out.String())
}
