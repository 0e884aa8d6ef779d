package speller

// nextRow computes one row of the edit distance table: the distances between
// the candidate extended by character c and every prefix of query. prev is
// the row before c was added and prev2 the row before that, or nil for the
// first character; cPrev is the character that produced prev.
//
// An adjacent transposition costs one edit (optimal string alignment).
// Characters are small integers; -1 stands for a character that does not
// occur in the query. nextRow returns the smallest entry of row.
func nextRow(row, prev, prev2, query []int, c, cPrev int) int {
	row[0] = prev[0] + 1
	best := row[0]
	for j := 1; j < len(row); j++ {
		cost := 1
		if query[j-1] == c {
			cost = 0
		}
		d := min(prev[j]+1, row[j-1]+1, prev[j-1]+cost)
		if prev2 != nil && j > 1 && c >= 0 && c == query[j-2] && cPrev == query[j-1] {
			d = min(d, prev2[j-2]+1)
		}
		row[j] = d
		if d < best {
			best = d
		}
	}
	return best
}

// firstRow is the distance from the empty candidate to each query prefix.
func firstRow(n int) []int {
	row := make([]int, n+1)
	for j := range row {
		row[j] = j
	}
	return row
}

// Distance is the edit distance between a and b counted in characters, with
// insertions, deletions, substitutions and adjacent transpositions costing
// one each.
func Distance(a, b string) int {
	ids := make(map[rune]int)
	var query []int
	for _, r := range a {
		id, ok := ids[r]
		if !ok {
			id = len(ids)
			ids[r] = id
		}
		query = append(query, id)
	}

	prev2, prev := []int(nil), firstRow(len(query))
	cPrev := -1
	for _, r := range b {
		c, ok := ids[r]
		if !ok {
			c = -1
		}
		row := make([]int, len(query)+1)
		nextRow(row, prev, prev2, query, c, cPrev)
		prev2, prev, cPrev = prev, row, c
	}
	return prev[len(query)]
}
