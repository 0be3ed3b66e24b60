// Package quiz implements per-modality question selection (§4.2/§4.3):
// the leveled adaptive sampler and, for standard mode, the distractor
// generator over the word-relatedness graph.
package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"

	"vocabbie/internal/corpus"
	"vocabbie/internal/session"
)

// minNeighbors is the floor the related-id pool must reach before
// candidate generation runs (§4.2, step 1).
const minNeighbors = 5

// distractorCount is how many wrong answers accompany the correct one.
const distractorCount = 3

// maxTopUpIterations bounds the "keep drawing until enough distinct
// distractors" loops (§4.2 edge cases, §7's sampler-exhaustion rule).
const maxTopUpIterations = 10000

// LevelAndDirection derives the level and (for standard mode)
// direction for the ordinal-th question, per §4.2/§4.3.
func LevelAndDirection(ordinal int) (level int, cn2en bool) {
	if ordinal < 24 {
		return ordinal / 3, ordinal%3 == 1
	}
	return ((ordinal - 24) / 2) % corpus.NumLevels, ordinal%2 == 1
}

// relatedIDs gathers the union of entry's sim/incl/incl_rev neighbors,
// topping up with random same-level ids until at least minNeighbors
// are present (§4.2 step 1).
func relatedIDs(ctx context.Context, store corpus.Store, entry corpus.Entry) ([]uint32, error) {
	set := make(map[uint32]struct{})
	for _, id := range entry.Neighbors() {
		if id != entry.ID {
			set[id] = struct{}{}
		}
	}
	for len(set) < minNeighbors {
		exclude := make(map[uint32]struct{}, len(set)+1)
		for id := range set {
			exclude[id] = struct{}{}
		}
		exclude[entry.ID] = struct{}{}
		id, err := store.RandomID(ctx, int(entry.Level), exclude)
		if err != nil {
			return nil, fmt.Errorf("quiz: top up neighbors: %w", err)
		}
		set[id] = struct{}{}
	}
	out := make([]uint32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

// extractor pulls the candidate-pool contribution out of one
// neighbor's entry: translations for English→native, the surface word
// for native→English.
type extractor func(corpus.Entry) []string

// distractorPool accumulates candidate strings from a growing set of
// entries, topping itself up from the same level on demand (§4.2 step
// 2/3 and their edge cases).
type distractorPool struct {
	store   corpus.Store
	level   int
	usedIDs map[uint32]struct{}
	pool    []string
	extract extractor
}

func newDistractorPool(ctx context.Context, store corpus.Store, level int, neighborIDs []uint32, excludeID uint32, extract extractor) (*distractorPool, error) {
	dp := &distractorPool{
		store:   store,
		level:   level,
		usedIDs: make(map[uint32]struct{}, len(neighborIDs)+1),
		extract: extract,
	}
	dp.usedIDs[excludeID] = struct{}{}
	for _, id := range neighborIDs {
		entry, err := store.Entry(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("quiz: fetch neighbor %d: %w", id, err)
		}
		dp.pool = append(dp.pool, extract(entry)...)
		dp.usedIDs[id] = struct{}{}
	}
	return dp, nil
}

func (dp *distractorPool) topUp(ctx context.Context) error {
	id, err := dp.store.RandomID(ctx, dp.level, dp.usedIDs)
	if err != nil {
		return fmt.Errorf("quiz: top up distractor pool: %w", err)
	}
	entry, err := dp.store.Entry(ctx, id)
	if err != nil {
		return fmt.Errorf("quiz: fetch top-up entry %d: %w", id, err)
	}
	dp.pool = append(dp.pool, dp.extract(entry)...)
	dp.usedIDs[id] = struct{}{}
	return nil
}

// choose draws distractorCount distinct strings from the pool, none
// equal to correct, topping the pool up from the corpus as needed
// (§4.2 edge cases).
func (dp *distractorPool) choose(ctx context.Context, correct string) ([]string, error) {
	for iter := 0; iter < maxTopUpIterations; iter++ {
		chosen, ok := pickDistinct(dp.pool, correct, distractorCount)
		if ok {
			return chosen, nil
		}
		if err := dp.topUp(ctx); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("quiz: exhausted %d iterations choosing distractors", maxTopUpIterations)
}

// pickDistinct shuffles pool and greedily takes up to count entries
// that are pairwise distinct and not equal to correct.
func pickDistinct(pool []string, correct string, count int) ([]string, bool) {
	order := rand.Perm(len(pool))
	chosen := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for _, i := range order {
		c := pool[i]
		if c == correct {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		chosen = append(chosen, c)
		if len(chosen) == count {
			return chosen, true
		}
	}
	return chosen, false
}

// placeCandidates inserts correct at a uniformly random index among
// the distractors, returning the 4 candidates and that index.
func placeCandidates(distractors []string, correct string) ([4]string, int) {
	answerIndex := rand.IntN(4)
	var out [4]string
	d := 0
	for i := 0; i < 4; i++ {
		if i == answerIndex {
			out[i] = correct
			continue
		}
		out[i] = distractors[d]
		d++
	}
	return out, answerIndex
}

func translationsOf(e corpus.Entry) []string { return e.Translations }
func wordOf(e corpus.Entry) []string         { return []string{e.Word} }

// genEn2Cn builds an English→native question: the target word itself
// is shown, and the candidates are translations (§4.2 step 2).
func genEn2Cn(ctx context.Context, store corpus.Store, entry corpus.Entry, neighborIDs []uint32) (question string, candidates [4]string, answerIndex int, err error) {
	if len(entry.Translations) == 0 {
		return "", candidates, 0, fmt.Errorf("quiz: entry %d has no translations", entry.ID)
	}
	correct := entry.Translations[rand.IntN(len(entry.Translations))]

	pool, err := newDistractorPool(ctx, store, int(entry.Level), neighborIDs, entry.ID, translationsOf)
	if err != nil {
		return "", candidates, 0, err
	}
	distractors, err := pool.choose(ctx, correct)
	if err != nil {
		return "", candidates, 0, err
	}
	candidates, answerIndex = placeCandidates(distractors, correct)
	return entry.Word, candidates, answerIndex, nil
}

// genCn2En builds a native→English question: a translation of the
// target is shown, and the candidates are neighbor surface words
// (§4.2 step 3).
func genCn2En(ctx context.Context, store corpus.Store, entry corpus.Entry, neighborIDs []uint32) (question string, candidates [4]string, answerIndex int, err error) {
	if len(entry.Translations) == 0 {
		return "", candidates, 0, fmt.Errorf("quiz: entry %d has no translations", entry.ID)
	}
	correct := entry.Word

	pool, err := newDistractorPool(ctx, store, int(entry.Level), neighborIDs, entry.ID, wordOf)
	if err != nil {
		return "", candidates, 0, err
	}
	distractors, err := pool.choose(ctx, correct)
	if err != nil {
		return "", candidates, 0, err
	}
	candidates, answerIndex = placeCandidates(distractors, correct)
	question = entry.Translations[rand.IntN(len(entry.Translations))]
	return question, candidates, answerIndex, nil
}

// AdvanceStandard picks the next word and assembles its candidates
// for a standard-mode session (§4.2), writing the result into sess.
func AdvanceStandard(ctx context.Context, store corpus.Store, sess *session.Session) error {
	if sess.Modality != session.ModalityStandard {
		return fmt.Errorf("quiz: AdvanceStandard called on non-standard session")
	}
	st := sess.Standard
	ordinal := len(st.History)
	level, cn2en := LevelAndDirection(ordinal)

	currentWord, err := store.RandomID(ctx, level, sess.HistoryIDSet())
	if err != nil {
		return fmt.Errorf("quiz: pick current word: %w", err)
	}
	entry, err := store.Entry(ctx, currentWord)
	if err != nil {
		return err
	}
	neighbors, err := relatedIDs(ctx, store, entry)
	if err != nil {
		return err
	}

	var question string
	var candidates [4]string
	var answerIndex int
	if cn2en {
		question, candidates, answerIndex, err = genCn2En(ctx, store, entry, neighbors)
	} else {
		question, candidates, answerIndex, err = genEn2Cn(ctx, store, entry, neighbors)
	}
	if err != nil {
		return err
	}

	st.CurrentWord = currentWord
	st.Question = question
	st.Candidates = candidates
	st.AnswerIndex = answerIndex
	return nil
}

// AdvanceRecall picks the next word for a corpus-backed recall
// session (§4.3): same level derivation as standard, ignoring
// direction.
func AdvanceRecall(ctx context.Context, store corpus.Store, sess *session.Session) error {
	if sess.Modality != session.ModalityRecall {
		return fmt.Errorf("quiz: AdvanceRecall called on non-recall session")
	}
	st := sess.Recall
	ordinal := len(st.History)
	level, _ := LevelAndDirection(ordinal)

	currentWord, err := store.RandomID(ctx, level, sess.HistoryIDSet())
	if err != nil {
		return fmt.Errorf("quiz: pick current word: %w", err)
	}
	st.CurrentWord = currentWord
	return nil
}

// AdvanceRecallTyv picks the next position in the broad/narrow
// concatenation for a recall-tyv session (§4.3).
func AdvanceRecallTyv(sess *session.Session, broadLen, narrowLen int) error {
	if sess.Modality != session.ModalityRecallTyv {
		return fmt.Errorf("quiz: AdvanceRecallTyv called on non-recall-tyv session")
	}
	st := sess.RecallTyv
	ordinal := len(st.History)

	var lo, hi uint32
	if ordinal < 40 {
		lo, hi = 0, uint32(broadLen)
	} else {
		lo, hi = uint32(broadLen), uint32(broadLen+narrowLen)
	}
	exclude := sess.HistoryIDSet()
	for iter := 0; iter < maxTopUpIterations; iter++ {
		pos := lo + rand.Uint32N(hi-lo)
		if _, used := exclude[pos]; !used {
			st.CurrentWord = pos
			return nil
		}
	}
	return fmt.Errorf("quiz: exhausted %d iterations picking recall-tyv position", maxTopUpIterations)
}
