// Package estimate implements the pure vocabulary-size estimators
// described in §4.1: ULS, RFWLS and the heuristic positional
// estimator. Each is a deterministic function of an evidence sequence
// (property 4, §8). ULS and RFWLS are bounded above by the corpus size
// (properties 5/6, §8); Heuristic's u32 position update can wrap, so
// its result has no such bound.
package estimate

import "vocabbie/internal/corpus"

// oneFixedPoint is floor((2^128-1) / 10_000_000), a fixed-point
// scale chosen so that 1/freq weights don't collapse to zero under
// integer division (§4.1).
var oneFixedPoint = maxU128().div(u128FromU64(10_000_000))

func maxU128() u128 {
	return u128{hi: ^uint64(0), lo: ^uint64(0)}
}

// ULS is the Uniform Leveled Scaling estimator: per level, the
// fraction of correctly-answered evidence scales that level's word
// count, and the scaled counts are summed across levels.
func ULS(evidences []corpus.Evidence) uint64 {
	var total, correct [corpus.NumLevels]uint32
	for _, ev := range evidences {
		total[ev.Level]++
		if ev.Correct {
			correct[ev.Level]++
		}
	}
	var estimate uint64
	for i := 0; i < corpus.NumLevels; i++ {
		if total[i] == 0 {
			continue
		}
		estimate += uint64(corpus.LVCounts[i]) * uint64(correct[i]) / uint64(total[i])
	}
	return estimate
}

// RFWLS is Reciprocal Frequency Weighted Leveled Scaling: like ULS,
// but each evidence contributes weight 1/freq instead of 1, computed
// in 128-bit fixed point to avoid the precision loss plain integer
// division would cause.
func RFWLS(evidences []corpus.Evidence) uint64 {
	var total, correct [corpus.NumLevels]u128
	for _, ev := range evidences {
		weight := oneFixedPoint.div(u128FromU64(uint64(ev.Freq)))
		total[ev.Level] = total[ev.Level].add(weight)
		if ev.Correct {
			correct[ev.Level] = correct[ev.Level].add(weight)
		}
	}
	var estimate uint64
	for i := 0; i < corpus.NumLevels; i++ {
		if total[i].isZero() {
			continue
		}
		numerator := correct[i].mulU64Trunc(uint64(corpus.LVCounts[i]))
		estimate += numerator.div(total[i]).toU64()
	}
	return estimate
}

// Heuristic is the positional estimator: it first finds the level
// with the most weighted-correct evidence, starts a cursor in the
// middle of that level's range, then nudges the cursor toward or away
// from every evidence outside that level using a frequency-scaled
// displacement (§4.1).
func Heuristic(evidences []corpus.Evidence) uint64 {
	var ws [corpus.NumLevels]u128
	for _, ev := range evidences {
		if !ev.Correct {
			continue
		}
		weight := oneFixedPoint.div(u128FromU64(uint64(ev.Freq)))
		ws[ev.Level] = ws[ev.Level].add(weight)
	}

	level := 0
	for i := 1; i < corpus.NumLevels; i++ {
		if ws[i].cmp(ws[level]) > 0 {
			level = i
		}
	}

	pos := corpus.LVRanges[level].Start + corpus.LVCounts[level]/2
	end := float64(corpus.LVRanges[corpus.NumLevels-1].End)

	for _, ev := range evidences {
		if int(ev.Level) == level {
			continue
		}
		freq := float64(ev.Freq)
		posF := float64(pos)
		var w float64
		if freq > posF {
			w = (freq - posF) * (end - freq) / (end - posF)
		} else {
			w = (posF - freq) * float64(ev.Freq/pos)
		}
		// §4.1: arithmetic after the ws accumulation is float64, cast
		// to u32 for the position update — including the wraparound
		// that cast implies, matching the original's release-mode
		// unchecked u32 arithmetic.
		if ev.Correct {
			pos += uint32(w)
		} else {
			pos -= uint32(w)
		}
	}

	return uint64(pos)
}
