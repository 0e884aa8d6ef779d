package speller

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/smhanov/fsa"
	"github.com/smhanov/fsa/dictionary"
)

// maxCharBytes bounds the bytes of one encoded character; longer runs of
// incomplete bytes are treated as garbage and not followed.
const maxCharBytes = 8

// checkEvery is how many arcs are examined between context checks.
const checkEvery = 1024

type candidate struct {
	word     string
	distance int
}

type searchFrame struct {
	arc      fsa.Arc
	expanded bool

	// chars is the number of whole characters before this arc's byte and
	// begin the path offset where the character holding this byte starts.
	chars int
	begin int
}

// searcher walks the automaton depth first while keeping one edit distance
// row per whole character on the current path. A branch is abandoned as soon
// as its row minimum exceeds the budget, since the minimum never decreases
// further down.
type searcher struct {
	dict *dictionary.Dictionary
	fsa  *fsa.Automaton
	max  int

	query []int
	ids   map[string]int

	rows  [][]int // rows[k] is the row after k characters
	chars []int   // chars[k] is the id of character k on the path
	path  []byte
	stack []searchFrame

	found map[string]int
}

func newSearcher(d *dictionary.Dictionary, query [][]byte, max int) *searcher {
	s := &searcher{
		dict:  d,
		fsa:   d.Automaton(),
		max:   max,
		ids:   make(map[string]int, len(query)),
		query: make([]int, len(query)),
		found: make(map[string]int),
	}
	for i, ch := range query {
		id, ok := s.ids[string(ch)]
		if !ok {
			id = len(s.ids)
			s.ids[string(ch)] = id
		}
		s.query[i] = id
	}
	s.rows = append(s.rows, firstRow(len(query)))
	return s
}

// row returns the row for k characters, allocating it on first use.
func (s *searcher) row(k int) []int {
	for len(s.rows) <= k {
		s.rows = append(s.rows, make([]int, len(s.query)+1))
	}
	return s.rows[k]
}

func (s *searcher) charID(ch []byte) int {
	if id, ok := s.ids[string(ch)]; ok {
		return id
	}
	return -1
}

func (s *searcher) run(ctx context.Context) ([]candidate, error) {
	a := s.fsa
	n := len(s.query)
	sep := s.dict.Separator()

	if first, ok := a.FirstArc(a.StartNode()); ok {
		s.stack = append(s.stack, searchFrame{arc: first})
	}

	for steps := 0; len(s.stack) > 0; steps++ {
		if steps%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		depth := len(s.stack) - 1
		top := &s.stack[depth]

		if !top.expanded {
			top.expanded = true
			if child, ok := s.expand(top, depth, sep, n); ok {
				s.stack = append(s.stack, child)
				continue
			}
		}

		if next, ok := a.NextArc(top.arc); ok {
			*top = searchFrame{arc: next, chars: top.chars, begin: top.begin}
			continue
		}
		s.stack = s.stack[:depth]
	}

	results := make([]candidate, 0, len(s.found))
	for word, distance := range s.found {
		results = append(results, candidate{word, distance})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].distance != results[j].distance {
			return results[i].distance < results[j].distance
		}
		return results[i].word < results[j].word
	})
	return results, nil
}

// expand handles the byte of top's arc at path offset depth. It records a
// candidate if a word ends here and returns the frame to descend into, if
// the branch is still within budget.
func (s *searcher) expand(top *searchFrame, depth int, sep byte, n int) (searchFrame, bool) {
	a := s.fsa
	label := a.Label(top.arc)
	if sep != 0 && label == sep {
		return searchFrame{}, false
	}

	s.path = append(s.path[:depth], label)
	ch := s.path[top.begin:]
	if len(ch) > maxCharBytes || depth+1 >= fsa.DefaultMaxDepth {
		return searchFrame{}, false
	}

	chars, begin := top.chars, top.begin
	if s.dict.CharComplete(ch) {
		k := top.chars
		id := s.charID(ch)
		s.chars = append(s.chars[:k], id)

		var prev2 []int
		cPrev := -1
		if k > 0 {
			prev2 = s.rows[k-1]
			cPrev = s.chars[k-1]
		}
		row := s.row(k + 1)
		if nextRow(row, s.rows[k], prev2, s.query, id, cPrev) > s.max {
			return searchFrame{}, false
		}

		if d := row[n]; d > 0 && d <= s.max && s.dict.IsWordEnd(top.arc) {
			s.record(s.path, d)
		}
		chars, begin = k+1, depth+1
	}

	if a.IsTerminal(top.arc) {
		return searchFrame{}, false
	}
	first, ok := a.FirstArc(a.Destination(top.arc))
	if !ok {
		return searchFrame{}, false
	}
	return searchFrame{arc: first, chars: chars, begin: begin}, true
}

func (s *searcher) record(path []byte, distance int) {
	word, err := s.dict.Decode(path)
	if err != nil {
		logrus.WithError(err).Debug("skipping undecodable candidate")
		return
	}
	if d, ok := s.found[word]; !ok || distance < d {
		s.found[word] = distance
	}
}
