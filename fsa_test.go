package fsa_test

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/fsa"
)

func testWords() []string {
	return []string{
		"abace",
		"abak",
		"abaka",
		"abakan",
		"bak",
		"baka",
		"cat",
		"catnip",
		"cats",
		"hello",
		"jello",
	}
}

func build(t testing.TB, words []string, opts ...fsa.BuildOption) *fsa.Automaton {
	b := fsa.NewBuilder(opts...)
	for _, word := range words {
		require.NoError(t, b.AddString(word))
	}
	return b.Finish()
}

func roundTrip(t testing.TB, a *fsa.Automaton) *fsa.Automaton {
	var buf bytes.Buffer
	n, err := a.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	loaded, err := fsa.FromBytes(buf.Bytes())
	require.NoError(t, err)
	return loaded
}

func testAutomaton(t *testing.T, a *fsa.Automaton, words []string) {
	for _, word := range words {
		assert.True(t, a.Contains([]byte(word)), "missing %q", word)
	}

	got, err := a.Collect()
	require.NoError(t, err)
	require.Len(t, got, len(words))
	for i, seq := range got {
		assert.Equal(t, words[i], string(seq))
	}
}

func runTest(t *testing.T, words []string) *fsa.Automaton {
	a := build(t, words)
	testAutomaton(t, a, words)

	// Now try the disk version
	path := filepath.Join(t.TempDir(), "test.dict")
	_, err := a.Save(path)
	require.NoError(t, err)

	saved, err := fsa.Load(path)
	require.NoError(t, err)
	testAutomaton(t, saved, words)

	assert.Equal(t, a.NumArcs(), saved.NumArcs())
	assert.Equal(t, a.NumNodes(), saved.NumNodes())
	assert.True(t, saved.Sorted())
	return saved
}

func TestSingleEntry(t *testing.T) {
	a := runTest(t, []string{"a"})
	assert.Equal(t, 1, a.NumArcs())
	assert.Equal(t, 1, a.NumNodes())

	arc, ok := a.FirstArc(a.StartNode())
	require.True(t, ok)
	assert.Equal(t, byte('a'), a.Label(arc))
	assert.True(t, a.IsFinal(arc))
	assert.True(t, a.IsTerminal(arc))
	assert.Equal(t, fsa.NoNode, a.Destination(arc))
	_, ok = a.NextArc(arc)
	assert.False(t, ok)
}

func TestHelloJello(t *testing.T) {
	a := runTest(t, []string{"hello", "jello"})
	// the "ello" tail is shared
	assert.Equal(t, 2+4, a.NumArcs())
}

func TestWords(t *testing.T) {
	a := runTest(t, testWords())

	for _, miss := range []string{"", "a", "aba", "abakana", "catn", "dog", "hell", "jellos"} {
		assert.False(t, a.Contains([]byte(miss)), "unexpected %q", miss)
	}
}

func TestEmptyAutomaton(t *testing.T) {
	a := runTest(t, nil)
	assert.Equal(t, 0, a.NumArcs())
	assert.Equal(t, 0, a.NumNodes())
	_, ok := a.FirstArc(a.StartNode())
	assert.False(t, ok)
	assert.False(t, a.Contains([]byte("a")))

	// no node has arcs out of order
	assert.Equal(t, fsa.FlagSorted, a.Flags())
	assert.True(t, a.Sorted())
}

func TestArcWalk(t *testing.T) {
	a := build(t, testWords())

	var labels []byte
	for arc, ok := a.FirstArc(a.StartNode()); ok; arc, ok = a.NextArc(arc) {
		labels = append(labels, a.Label(arc))
	}
	assert.Equal(t, []byte("abchj"), labels)

	arc, ok := a.Follow(a.StartNode(), []byte("abak"))
	require.True(t, ok)
	assert.True(t, a.IsFinal(arc))
	assert.False(t, a.IsTerminal(arc))

	next, ok := a.ArcFor(a.Destination(arc), 'a')
	require.True(t, ok)
	assert.True(t, a.IsFinal(next))

	_, ok = a.ArcFor(a.Destination(arc), 'x')
	assert.False(t, ok)
}

func TestIndexOf(t *testing.T) {
	words := testWords()
	a := roundTrip(t, build(t, words, fsa.WithNumbers()))
	assert.NotZero(t, a.Flags()&fsa.FlagNumbers)

	for i, word := range words {
		assert.Equal(t, i, a.IndexOf([]byte(word)), word)
	}
	assert.Equal(t, -1, a.IndexOf([]byte("aba")))
	assert.Equal(t, -1, a.IndexOf([]byte("zzz")))

	plain := build(t, words)
	assert.Equal(t, -1, plain.IndexOf([]byte("abak")))
}

func TestHeader(t *testing.T) {
	a := roundTrip(t, build(t, testWords(), fsa.WithFiller('_'), fsa.WithAnnotationSeparator('+')))
	assert.Equal(t, fsa.Version, a.Version())
	assert.Equal(t, byte('_'), a.Filler())
	assert.Equal(t, byte('+'), a.AnnotationSeparator())
	assert.Equal(t, "SORTED", a.Flags().String())
}

func TestBuilderOrder(t *testing.T) {
	b := fsa.NewBuilder()
	require.NoError(t, b.AddString("b"))
	assert.False(t, b.CanAdd([]byte("a")))
	assert.ErrorIs(t, b.AddString("a"), fsa.ErrOutOfOrder)
	assert.ErrorIs(t, b.AddString("b"), fsa.ErrOutOfOrder)
	assert.ErrorIs(t, b.AddString(""), fsa.ErrEmptySequence)
	require.NoError(t, b.AddString("c"))
	assert.Equal(t, 2, b.NumAdded())

	b.Finish()
	assert.ErrorIs(t, b.AddString("d"), fsa.ErrFinished)
}

func TestFormatErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := build(t, testWords()).WriteTo(&buf)
	require.NoError(t, err)
	good := buf.Bytes()

	corrupt := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), good...))
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", good[:8]},
		{"magic", corrupt(func(b []byte) []byte { b[0] = 'x'; return b })},
		{"version", corrupt(func(b []byte) []byte { b[4] = 9; return b })},
		{"flags", corrupt(func(b []byte) []byte { b[5] |= 0x80; return b })},
		{"abits", corrupt(func(b []byte) []byte { b[8] = 0; return b })},
		{"wbits", corrupt(func(b []byte) []byte { b[9] = 3; return b })},
		{"trailing", corrupt(func(b []byte) []byte { return append(b, 0) })},
		{"truncated", good[:len(good)-1]},
		{"nodes", corrupt(func(b []byte) []byte { b[10]++; return b })},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, err := fsa.FromBytes(test.data)
			assert.Nil(t, a)
			require.Error(t, err)
			assert.ErrorIs(t, err, fsa.ErrFormat)
			var fe *fsa.FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := fsa.Load(filepath.Join(t.TempDir(), "missing.dict"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fsa.ErrFormat)
}

func TestSequencesRestart(t *testing.T) {
	a := build(t, testWords())

	it := a.Sequences()
	require.True(t, it.Next())
	assert.Equal(t, "abace", string(it.Bytes()))

	// a second iterator starts from the beginning again
	again, err := a.Collect()
	require.NoError(t, err)
	assert.Len(t, again, len(testWords()))

	require.True(t, it.Next())
	assert.Equal(t, "abak", string(it.Bytes()))
}

func TestSequencesFrom(t *testing.T) {
	a := build(t, testWords())
	arc, ok := a.Follow(a.StartNode(), []byte("cat"))
	require.True(t, ok)

	var got []string
	it := a.SequencesFrom(a.Destination(arc))
	for it.Next() {
		got = append(got, string(it.Bytes()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"nip", "s"}, got)
}

func TestMaxDepth(t *testing.T) {
	a := build(t, []string{"ab", "abcdef"})
	it := a.Sequences(fsa.MaxDepth(3))
	require.True(t, it.Next())
	assert.Equal(t, "ab", string(it.Bytes()))
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), fsa.ErrTraversalLimit)
	assert.False(t, it.Next())
}

func readDictWords(t *testing.T) []string {
	dict := "/usr/share/dict/words"
	file, err := os.Open(dict)
	if err != nil {
		t.Skipf("Skipping full dictionary test; can't open %s", dict)
	}
	defer file.Close()

	seen := make(map[string]bool)
	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if w := scanner.Text(); w != "" && !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}

func TestFullDict(t *testing.T) {
	words := readDictWords(t)
	a := runTest(t, words)
	t.Logf("Automaton has %v words, %v nodes, %v arcs",
		len(words), a.NumNodes(), a.NumArcs())
}

func ExampleBuilder() {
	b := fsa.NewBuilder()
	b.AddString("blip")
	b.AddString("cat")
	b.AddString("catnip")
	b.AddString("cats")

	a := b.Finish()

	it := a.Sequences()
	for it.Next() {
		fmt.Println(string(it.Bytes()))
	}
	fmt.Println(a.Contains([]byte("cat")), a.Contains([]byte("ca")))

	// Output:
	// blip
	// cat
	// catnip
	// cats
	// true false
}
