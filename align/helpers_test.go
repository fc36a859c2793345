package align_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/sonido-align/align"
)

func scoreID(i int) string { return fmt.Sprintf("s%d", i) }
func perfID(i int) string  { return fmt.Sprintf("p%d", i) }

// pitchOf indexes a note array by id
func pitchOf(notes align.NoteArray, id string) (int, bool) {
	for _, note := range notes {
		if note.ID == id {
			return note.Pitch, true
		}
	}
	return 0, false
}

// checkAlignmentInvariants asserts the global uniqueness and pitch-equality
// contract: every score id appears exactly once as MATCH or DELETION, every
// performance id exactly once as MATCH or INSERTION, and matched notes share
// their pitch.
func checkAlignmentInvariants(t *testing.T, alignment align.AlignmentVector, score, perf align.NoteArray) {
	t.Helper()

	scoreSeen := make(map[string]int)
	perfSeen := make(map[string]int)

	for _, record := range alignment {
		switch record.Label {
		case align.MatchLabel:
			scoreSeen[record.ScoreID]++
			perfSeen[record.PerformanceID]++

			scorePitch, ok := pitchOf(score, record.ScoreID)
			assert.True(t, ok, "match references unknown score id %s", record.ScoreID)
			perfPitch, ok := pitchOf(perf, record.PerformanceID)
			assert.True(t, ok, "match references unknown perf id %s", record.PerformanceID)
			assert.Equal(t, scorePitch, perfPitch, "match %s/%s pitches differ", record.ScoreID, record.PerformanceID)
		case align.DeletionLabel:
			scoreSeen[record.ScoreID]++
		case align.InsertionLabel:
			perfSeen[record.PerformanceID]++
		}
	}

	for _, note := range score {
		assert.Equal(t, 1, scoreSeen[note.ID], "score id %s must appear exactly once", note.ID)
	}
	for _, note := range perf {
		assert.Equal(t, 1, perfSeen[note.ID], "perf id %s must appear exactly once", note.ID)
	}

	matches := len(recordsByLabel(alignment, align.MatchLabel))
	deletions := len(recordsByLabel(alignment, align.DeletionLabel))
	insertions := len(recordsByLabel(alignment, align.InsertionLabel))
	assert.Equal(t, len(score), matches+deletions, "match + deletion count covers the score")
	assert.Equal(t, len(perf), matches+insertions, "match + insertion count covers the performance")
}
