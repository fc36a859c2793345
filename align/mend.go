package align

// matchCandidate is one windowed MATCH proposal for a note id
type matchCandidate struct {
	window  int
	otherID string
}

// MendNoteAlignments fuses per-window alignments into one global alignment.
// Windows overlap, so a note id can surface in several windows under
// different labels; the mender resolves MATCH conflicts with an
// earliest-window-wins policy, hands unresolved notes to the greedy fallback,
// and closes the books with DELETION/INSERTION records so that every score id
// and every performance id appears exactly once.
//
// maxTraversalDepth is reserved for a future graph-walk conflict resolver;
// it is accepted but does not influence the earliest-window policy.
func MendNoteAlignments(windowAlignments []AlignmentVector, scoreNotes, performanceNotes NoteArray, nodeTimes []TimeAlignment, maxTraversalDepth int) AlignmentVector {
	_ = maxTraversalDepth
	_ = nodeTimes

	scoreCandidates := make(map[string][]matchCandidate)
	perfCandidates := make(map[string][]matchCandidate)

	for windowID, windowAlignment := range windowAlignments {
		for _, record := range windowAlignment {
			if record.Label != MatchLabel {
				continue
			}
			scoreCandidates[record.ScoreID] = append(scoreCandidates[record.ScoreID],
				matchCandidate{window: windowID, otherID: record.PerformanceID})
			perfCandidates[record.PerformanceID] = append(perfCandidates[record.PerformanceID],
				matchCandidate{window: windowID, otherID: record.ScoreID})
		}
	}

	usedScore := make(map[string]bool)
	usedPerf := make(map[string]bool)

	global := make(AlignmentVector, 0, len(scoreNotes)+len(performanceNotes))

	// Deterministic pass in score-array order. A candidate is accepted from
	// the earliest window whose performance note is free, unless that
	// performance note is still claimable by an earlier-window candidate
	// belonging to another score note.
	for _, scoreNote := range scoreNotes {
		if usedScore[scoreNote.ID] {
			continue
		}

		for _, cand := range scoreCandidates[scoreNote.ID] {
			if usedPerf[cand.otherID] {
				continue
			}
			if earlierClaimOpen(perfCandidates[cand.otherID], cand.window, scoreNote.ID, usedScore) {
				continue
			}

			global = append(global, NewMatch(scoreNote.ID, cand.otherID))
			usedScore[scoreNote.ID] = true
			usedPerf[cand.otherID] = true
			break
		}
	}

	// Residuals go through the greedy fallback, which also emits the final
	// DELETION/INSERTION records for whatever it cannot pair.
	var residualScore NoteArray
	for _, note := range scoreNotes {
		if !usedScore[note.ID] {
			residualScore = append(residualScore, note)
		}
	}

	var residualPerf NoteArray
	for _, note := range performanceNotes {
		if !usedPerf[note.ID] {
			residualPerf = append(residualPerf, note)
		}
	}

	global = append(global, SimpleGreedyMatch(residualScore, residualPerf)...)

	return global
}

// earlierClaimOpen reports whether a candidate list for a performance note
// holds an entry from a window before the given one whose score note is a
// different, still-unmatched id
func earlierClaimOpen(candidates []matchCandidate, window int, scoreID string, usedScore map[string]bool) bool {
	for _, cand := range candidates {
		if cand.window >= window {
			continue
		}
		if cand.otherID != scoreID && !usedScore[cand.otherID] {
			return true
		}
	}
	return false
}
