package align

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
)

// SimpleGreedyMatch aligns by first-come pitch equality: each score note
// takes the first unconsumed performance note of equal pitch, otherwise it is
// a deletion; leftover performance notes become insertions. No time data is
// consulted, which makes it both a smoke-test matcher and the fallback when
// onset information is insufficient.
func SimpleGreedyMatch(scoreNotes, performanceNotes NoteArray) AlignmentVector {
	alignment := make(AlignmentVector, 0, len(scoreNotes)+len(performanceNotes))
	performanceAligned := make(map[string]bool)

	for _, scoreNote := range scoreNotes {
		matched := false
		for _, perfNote := range performanceNotes {
			if scoreNote.Pitch == perfNote.Pitch && !performanceAligned[perfNote.ID] {
				performanceAligned[perfNote.ID] = true
				alignment = append(alignment, NewMatch(scoreNote.ID, perfNote.ID))
				matched = true
				break
			}
		}
		if !matched {
			alignment = append(alignment, NewDeletion(scoreNote.ID))
		}
	}

	for _, perfNote := range performanceNotes {
		if !performanceAligned[perfNote.ID] {
			alignment = append(alignment, NewInsertion(perfNote.ID))
		}
	}

	return alignment
}

// SequenceAugmentedGreedyMatcher performs per-pitch optimal-transport style
// matching on interpolated onset times, with a combinatorial omission search
// when one side has surplus notes.
type SequenceAugmentedGreedyMatcher struct {
	rng *rand.Rand
}

// NewSequenceAugmentedGreedyMatcher creates a matcher with a time-seeded RNG
func NewSequenceAugmentedGreedyMatcher() *SequenceAugmentedGreedyMatcher {
	return NewSeededSequenceAugmentedGreedyMatcher(time.Now().UnixNano())
}

// NewSeededSequenceAugmentedGreedyMatcher creates a matcher whose random
// subset sampling is reproducible for the given seed
func NewSeededSequenceAugmentedGreedyMatcher(seed int64) *SequenceAugmentedGreedyMatcher {
	return &SequenceAugmentedGreedyMatcher{rng: rand.New(rand.NewSource(seed))}
}

// Match aligns one window of score and performance notes around the given
// alignment nodes. With fewer than two nodes there is no usable time map and
// matching delegates to SimpleGreedyMatch. shift subtracts the optimal mean
// onset shift inside the combinatorial objective; capCombinations bounds the
// exhaustive search, above it subsets are sampled uniformly at random.
func (m *SequenceAugmentedGreedyMatcher) Match(scoreNotes, performanceNotes NoteArray, alignmentTimes []TimeAlignment, shift bool, capCombinations int) AlignmentVector {
	if len(alignmentTimes) < 2 {
		return SimpleGreedyMatch(scoreNotes, performanceNotes)
	}

	interpolator, err := interpolatorFromTimes(alignmentTimes)
	if err != nil {
		return SimpleGreedyMatch(scoreNotes, performanceNotes)
	}

	alignment := make(AlignmentVector, 0, len(scoreNotes)+len(performanceNotes))
	performanceAligned := make(map[string]bool)

	for _, pitch := range scoreNotes.UniquePitches() {
		scorePitchNotes := scoreNotes.FilterPitch(pitch)
		perfPitchNotes := performanceNotes.FilterPitch(pitch)

		if len(scorePitchNotes) == 0 || len(perfPitchNotes) == 0 {
			for _, note := range scorePitchNotes {
				alignment = append(alignment, NewDeletion(note.ID))
			}
			for _, note := range perfPitchNotes {
				alignment = append(alignment, NewInsertion(note.ID))
				performanceAligned[note.ID] = true
			}
			continue
		}

		// Map score onsets into performance time, then rank both sides by onset
		scoreOnsets := interpolator.AtAll(scorePitchNotes.OnsetsBeat())
		perfOnsets := perfPitchNotes.OnsetsSec()

		scoreOrder := sortedOrder(scoreOnsets)
		perfOrder := sortedOrder(perfOnsets)

		sortedScoreOnsets := permute(scoreOnsets, scoreOrder)
		sortedPerfOnsets := permute(perfOnsets, perfOrder)

		scoreCount := len(sortedScoreOnsets)
		perfCount := len(sortedPerfOnsets)

		if scoreCount == perfCount {
			for i := 0; i < scoreCount; i++ {
				scoreNote := scorePitchNotes[scoreOrder[i]]
				perfNote := perfPitchNotes[perfOrder[i]]
				alignment = append(alignment, NewMatch(scoreNote.ID, perfNote.ID))
				performanceAligned[perfNote.ID] = true
			}
			continue
		}

		scoreLonger := scoreCount > perfCount

		var long, short []float64
		if scoreLonger {
			long, short = sortedScoreOnsets, sortedPerfOnsets
		} else {
			long, short = sortedPerfOnsets, sortedScoreOnsets
		}

		omit := m.findBestCombination(long, short, shift, capCombinations)

		omitSet := make(map[int]bool, len(omit))
		for _, idx := range omit {
			omitSet[idx] = true
		}

		if scoreLonger {
			perfIdx := 0
			for scoreIdx := 0; scoreIdx < scoreCount; scoreIdx++ {
				scoreNote := scorePitchNotes[scoreOrder[scoreIdx]]
				if !omitSet[scoreIdx] && perfIdx < perfCount {
					perfNote := perfPitchNotes[perfOrder[perfIdx]]
					alignment = append(alignment, NewMatch(scoreNote.ID, perfNote.ID))
					performanceAligned[perfNote.ID] = true
					perfIdx++
				} else {
					alignment = append(alignment, NewDeletion(scoreNote.ID))
				}
			}
		} else {
			scoreIdx := 0
			for perfIdx := 0; perfIdx < perfCount; perfIdx++ {
				perfNote := perfPitchNotes[perfOrder[perfIdx]]
				if !omitSet[perfIdx] && scoreIdx < scoreCount {
					scoreNote := scorePitchNotes[scoreOrder[scoreIdx]]
					alignment = append(alignment, NewMatch(scoreNote.ID, perfNote.ID))
					performanceAligned[perfNote.ID] = true
					scoreIdx++
				} else {
					alignment = append(alignment, NewInsertion(perfNote.ID))
					performanceAligned[perfNote.ID] = true
				}
			}
		}
	}

	for _, perfNote := range performanceNotes {
		if !performanceAligned[perfNote.ID] {
			alignment = append(alignment, NewInsertion(perfNote.ID))
		}
	}

	return alignment
}

// findBestCombination searches for the size-k index subset of long whose
// removal minimizes the squared onset error against short, k being the length
// surplus. With shift set, the mean residual is subtracted first, making the
// objective translation-invariant. When C(n, k) exceeds capCombinations the
// search switches to uniform without-replacement subset sampling; a
// non-positive cap means exhaustive enumeration.
func (m *SequenceAugmentedGreedyMatcher) findBestCombination(long, short []float64, shift bool, capCombinations int) []int {
	n := len(long)
	k := n - len(short)
	if k <= 0 {
		return nil
	}

	bestScore := math.Inf(1)
	var bestOmit []int

	evaluate := func(omit []int) {
		shortened := omitIndices(long, omit)

		optimalShift := 0.0
		if shift {
			optimalShift = common.Mean(common.Residuals(shortened, short))
		}

		score := common.SumSquaredResiduals(shortened, short, optimalShift)
		if score < bestScore {
			bestScore = score
			bestOmit = append([]int(nil), omit...)
		}
	}

	if capCombinations > 0 && binomial(n, k) > float64(capCombinations) {
		for i := 0; i < capCombinations; i++ {
			omit := m.rng.Perm(n)[:k]
			sort.Ints(omit)
			evaluate(omit)
		}
	} else {
		forEachCombination(n, k, evaluate)
	}

	return bestOmit
}

// omitIndices copies long without the cells named by omit (sorted ascending),
// preserving order
func omitIndices(long []float64, omit []int) []float64 {
	out := make([]float64, 0, len(long)-len(omit))
	next := 0
	for i, v := range long {
		if next < len(omit) && omit[next] == i {
			next++
			continue
		}
		out = append(out, v)
	}
	return out
}

// binomial computes C(n, k) in floating point; large results only need to be
// compared against the sampling cap, not represented exactly
func binomial(n, k int) float64 {
	total := 1.0
	for i := 0; i < k; i++ {
		total *= float64(n-i) / float64(i+1)
	}
	return total
}

// forEachCombination yields every size-k subset of {0..n-1} exactly once in
// lexicographic order. The indices slice is reused between calls.
func forEachCombination(n, k int, fn func(indices []int)) {
	if k == 0 || k > n {
		return
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}

	for {
		fn(indices)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

// sortedOrder returns the permutation that sorts values ascending
func sortedOrder(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})
	return order
}

// permute returns values reordered by the given permutation
func permute(values []float64, order []int) []float64 {
	out := make([]float64, len(order))
	for i, idx := range order {
		out[i] = values[idx]
	}
	return out
}
