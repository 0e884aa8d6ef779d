package speller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the verdict for one word of a batch.
type Result struct {
	Word        string
	Correct     bool
	Suggestions []string
	RunOn       []string
}

// Check examines a single word. Misspelled words get both replacements and
// run-on splits.
func (s *Speller) Check(ctx context.Context, word string) (Result, error) {
	r := Result{Word: word, Correct: s.IsInDictionary(word)}
	if r.Correct {
		return r, nil
	}
	var err error
	if r.Suggestions, err = s.FindReplacementsContext(ctx, word, s.maxDistance); err != nil {
		return r, err
	}
	r.RunOn = s.ReplaceRunOnWords(word)
	return r, nil
}

// CheckAll checks words on up to workers goroutines and returns the results
// in input order. Zero workers means the configured default. The first error,
// usually a cancelled ctx, stops the batch.
func (s *Speller) CheckAll(ctx context.Context, words []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = s.workers
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(words))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, word := range words {
		i, word := i, word
		eg.Go(func() error {
			r, err := s.Check(ctx, word)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
