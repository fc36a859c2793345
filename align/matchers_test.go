package align_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-align/align"
)

func recordsByLabel(alignment align.AlignmentVector, label align.Label) align.AlignmentVector {
	var out align.AlignmentVector
	for _, record := range alignment {
		if record.Label == label {
			out = append(out, record)
		}
	}
	return out
}

func findMatch(alignment align.AlignmentVector, scoreID string) (align.Alignment, bool) {
	for _, record := range alignment {
		if record.Label == align.MatchLabel && record.ScoreID == scoreID {
			return record, true
		}
	}
	return align.Alignment{}, false
}

// TestSimpleGreedyMatch_Basic verifies first-come pitch matching with
// trailing insertions and deletions.
func TestSimpleGreedyMatch_Basic(t *testing.T) {
	score := align.NoteArray{
		align.NewScoreNote(0, 1, 60, "s0"),
		align.NewScoreNote(1, 1, 60, "s1"),
		align.NewScoreNote(2, 1, 72, "s2"),
	}
	perf := align.NoteArray{
		align.NewPerformanceNote(0, 1, 60, 70, "p0"),
		align.NewPerformanceNote(1, 1, 64, 70, "p1"),
	}

	alignment := align.SimpleGreedyMatch(score, perf)

	matches := recordsByLabel(alignment, align.MatchLabel)
	require.Len(t, matches, 1)
	assert.Equal(t, align.NewMatch("s0", "p0"), matches[0], "first score note takes the first equal-pitch note")

	deletions := recordsByLabel(alignment, align.DeletionLabel)
	assert.Len(t, deletions, 2, "unmatched score notes are deletions")

	insertions := recordsByLabel(alignment, align.InsertionLabel)
	require.Len(t, insertions, 1)
	assert.Equal(t, "p1", insertions[0].PerformanceID)
}

// TestSimpleGreedyMatch_Empty verifies the degenerate inputs.
func TestSimpleGreedyMatch_Empty(t *testing.T) {
	assert.Empty(t, align.SimpleGreedyMatch(nil, nil))

	perf := align.NoteArray{align.NewPerformanceNote(0, 1, 60, 70, "p0")}
	alignment := align.SimpleGreedyMatch(nil, perf)
	require.Len(t, alignment, 1)
	assert.Equal(t, align.InsertionLabel, alignment[0].Label)
}

var identityTimes = []align.TimeAlignment{
	{ScoreTime: 0, PerformanceTime: 0},
	{ScoreTime: 4, PerformanceTime: 4},
}

// TestSequenceAugmentedMatch_RankPairing verifies equal-cardinality pitch
// groups pair by onset rank even when the input order is jumbled.
func TestSequenceAugmentedMatch_RankPairing(t *testing.T) {
	score := align.NoteArray{
		align.NewScoreNote(2, 0.5, 60, "sLate"),
		align.NewScoreNote(0, 0.5, 60, "sEarly"),
	}
	perf := align.NoteArray{
		align.NewPerformanceNote(0.1, 0.5, 60, 70, "pEarly"),
		align.NewPerformanceNote(2.1, 0.5, 60, 70, "pLate"),
	}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)
	alignment := matcher.Match(score, perf, identityTimes, false, 10000)

	require.Len(t, recordsByLabel(alignment, align.MatchLabel), 2)

	early, ok := findMatch(alignment, "sEarly")
	require.True(t, ok)
	assert.Equal(t, "pEarly", early.PerformanceID)

	late, ok := findMatch(alignment, "sLate")
	require.True(t, ok)
	assert.Equal(t, "pLate", late.PerformanceID)
}

// TestSequenceAugmentedMatch_OmitsMiddleExtra reproduces the repeated-pitch
// run: five performance notes against four score notes must insert the
// off-grid middle note.
func TestSequenceAugmentedMatch_OmitsMiddleExtra(t *testing.T) {
	score := align.NoteArray{
		align.NewScoreNote(0, 0.5, 60, "s0"),
		align.NewScoreNote(1, 0.5, 60, "s1"),
		align.NewScoreNote(2, 0.5, 60, "s2"),
		align.NewScoreNote(3, 0.5, 60, "s3"),
	}
	perf := align.NoteArray{
		align.NewPerformanceNote(0.0, 0.5, 60, 70, "p0"),
		align.NewPerformanceNote(1.0, 0.5, 60, 70, "p1"),
		align.NewPerformanceNote(1.5, 0.5, 60, 70, "px"),
		align.NewPerformanceNote(2.0, 0.5, 60, 70, "p2"),
		align.NewPerformanceNote(3.0, 0.5, 60, 70, "p3"),
	}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)
	alignment := matcher.Match(score, perf, identityTimes, false, 10000)

	insertions := recordsByLabel(alignment, align.InsertionLabel)
	require.Len(t, insertions, 1)
	assert.Equal(t, "px", insertions[0].PerformanceID, "the off-grid middle note is the insertion")

	assert.Len(t, recordsByLabel(alignment, align.MatchLabel), 4)
	assert.Empty(t, recordsByLabel(alignment, align.DeletionLabel))
}

// TestSequenceAugmentedMatch_ScoreSurplus verifies the omission search on the
// score side emits deletions.
func TestSequenceAugmentedMatch_ScoreSurplus(t *testing.T) {
	score := align.NoteArray{
		align.NewScoreNote(0, 0.5, 60, "s0"),
		align.NewScoreNote(1.5, 0.5, 60, "sx"),
		align.NewScoreNote(3, 0.5, 60, "s1"),
	}
	perf := align.NoteArray{
		align.NewPerformanceNote(0.0, 0.5, 60, 70, "p0"),
		align.NewPerformanceNote(3.0, 0.5, 60, 70, "p1"),
	}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)
	alignment := matcher.Match(score, perf, identityTimes, false, 10000)

	deletions := recordsByLabel(alignment, align.DeletionLabel)
	require.Len(t, deletions, 1)
	assert.Equal(t, "sx", deletions[0].ScoreID)

	assert.Len(t, recordsByLabel(alignment, align.MatchLabel), 2)
	assert.Empty(t, recordsByLabel(alignment, align.InsertionLabel))
}

// TestSequenceAugmentedMatch_ShiftTranslationInvariance verifies that with
// shift enabled, translating every performance onset by a constant leaves the
// chosen omission unchanged.
func TestSequenceAugmentedMatch_ShiftTranslationInvariance(t *testing.T) {
	score := align.NoteArray{
		align.NewScoreNote(0, 0.5, 60, "s0"),
		align.NewScoreNote(1, 0.5, 60, "s1"),
		align.NewScoreNote(2, 0.5, 60, "s2"),
	}

	buildPerf := func(offset float64) align.NoteArray {
		return align.NoteArray{
			align.NewPerformanceNote(offset+0.0, 0.5, 60, 70, "p0"),
			align.NewPerformanceNote(offset+1.0, 0.5, 60, 70, "p1"),
			align.NewPerformanceNote(offset+1.4, 0.5, 60, 70, "px"),
			align.NewPerformanceNote(offset+2.0, 0.5, 60, 70, "p2"),
		}
	}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)

	for _, offset := range []float64{0, 10, -3} {
		alignment := matcher.Match(score, buildPerf(offset), identityTimes, true, 10000)
		insertions := recordsByLabel(alignment, align.InsertionLabel)
		require.Len(t, insertions, 1, "offset %v", offset)
		assert.Equal(t, "px", insertions[0].PerformanceID, "offset %v picks the same omission", offset)
	}
}

// TestSequenceAugmentedMatch_FallsBackWithoutTimeMap verifies delegation to
// the simple greedy matcher below two alignment nodes.
func TestSequenceAugmentedMatch_FallsBackWithoutTimeMap(t *testing.T) {
	score := align.NoteArray{align.NewScoreNote(0, 1, 60, "s0")}
	perf := align.NoteArray{align.NewPerformanceNote(0, 1, 60, 70, "p0")}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)
	alignment := matcher.Match(score, perf, []align.TimeAlignment{{ScoreTime: 0, PerformanceTime: 0}}, false, 10000)

	assert.Equal(t, align.SimpleGreedyMatch(score, perf), alignment)
}

// TestSequenceAugmentedMatch_DisjointPitches verifies trivial deletions and
// insertions for pitches present on only one side.
func TestSequenceAugmentedMatch_DisjointPitches(t *testing.T) {
	score := align.NoteArray{align.NewScoreNote(0, 1, 60, "s0")}
	perf := align.NoteArray{align.NewPerformanceNote(0, 1, 64, 70, "p0")}

	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(1)
	alignment := matcher.Match(score, perf, identityTimes, false, 10000)

	require.Len(t, alignment, 2)
	assert.Empty(t, recordsByLabel(alignment, align.MatchLabel))
	assert.Len(t, recordsByLabel(alignment, align.DeletionLabel), 1)
	assert.Len(t, recordsByLabel(alignment, align.InsertionLabel), 1)
}

// TestSequenceAugmentedMatch_SamplingKeepsInvariants drives the matcher past
// the combination cap so the random sampler runs, then checks the structural
// invariants that must hold regardless of which subsets were drawn.
func TestSequenceAugmentedMatch_SamplingKeepsInvariants(t *testing.T) {
	var score, perf align.NoteArray
	for i := 0; i < 10; i++ {
		score = append(score, align.NewScoreNote(float64(i)*0.25, 0.2, 60, scoreID(i)))
	}
	for i := 0; i < 24; i++ {
		perf = append(perf, align.NewPerformanceNote(float64(i)*0.11, 0.2, 60, 70, perfID(i)))
	}

	// C(24, 14) is far beyond the cap of 64, forcing the sampling branch
	matcher := align.NewSeededSequenceAugmentedGreedyMatcher(7)
	alignment := matcher.Match(score, perf, identityTimes, false, 64)

	assert.Len(t, recordsByLabel(alignment, align.MatchLabel), 10, "every score note pairs")
	assert.Len(t, recordsByLabel(alignment, align.InsertionLabel), 14, "surplus performance notes insert")
	checkAlignmentInvariants(t, alignment, score, perf)
}
