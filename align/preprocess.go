package align

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/stats"
	"github.com/RyanBlaney/sonido-align/logging"
)

// TimeAlignment pairs a score time (beats) with a performance time (seconds)
type TimeAlignment struct {
	ScoreTime       float64 `json:"score_time"`
	PerformanceTime float64 `json:"performance_time"`
}

// timeDedupEpsilon collapses alignment nodes whose score times coincide
const timeDedupEpsilon = 1e-6

// AlignmentTimesFromDTW computes a coarse score-time to performance-time map
// by warping the piano rolls of both note arrays. The performance roll is
// binarized before warping. Rolls are time-major, so DTW steps through time
// with the pitch-presence vector of each step as its feature vector; the path
// must never traverse the pitch axis. nodeLength is the score-time node
// spacing the caller is operating at; the path itself is produced at full
// piano-roll resolution.
func AlignmentTimesFromDTW(scoreNotes, performanceNotes NoteArray, matcher *stats.DynamicTimeWarping, nodeLength float64, sTimeDiv, pTimeDiv int) ([]TimeAlignment, error) {
	// Render both rolls over the union pitch range so every time step on
	// either side carries a feature vector of the same dimension.
	minPitch, maxPitch := unionPitchBounds(scoreNotes, performanceNotes)

	sRoll := PianoRollRange(scoreNotes, sTimeDiv, false, minPitch, maxPitch)
	pRoll := Binarize(PianoRollRange(performanceNotes, pTimeDiv, false, minPitch, maxPitch))

	logging.Debug("running piano-roll DTW", logging.Fields{
		"node_length": nodeLength,
		"score_steps": len(sRoll),
		"perf_steps":  len(pRoll),
	})

	result, err := matcher.Compute(sRoll, pRoll, true)
	if err != nil {
		return nil, fmt.Errorf("piano-roll DTW failed: %w", err)
	}

	times := make([]TimeAlignment, 0, len(result.Path))
	for _, step := range result.Path {
		times = append(times, TimeAlignment{
			ScoreTime:       float64(step.Row) / float64(sTimeDiv),
			PerformanceTime: float64(step.Col) / float64(pTimeDiv),
		})
	}

	sort.SliceStable(times, func(i, j int) bool {
		return times[i].ScoreTime < times[j].ScoreTime
	})

	return dedupTimes(times), nil
}

// unionPitchBounds spans the pitches of both arrays
func unionPitchBounds(scoreNotes, performanceNotes NoteArray) (minPitch, maxPitch int) {
	minPitch = 127
	maxPitch = 0
	for _, notes := range []NoteArray{scoreNotes, performanceNotes} {
		for _, note := range notes {
			minPitch = min(minPitch, note.Pitch)
			maxPitch = max(maxPitch, note.Pitch)
		}
	}
	return minPitch, maxPitch
}

// dedupTimes removes entries whose score time matches the predecessor within
// timeDedupEpsilon, keeping the first occurrence
func dedupTimes(times []TimeAlignment) []TimeAlignment {
	if len(times) == 0 {
		return times
	}

	deduped := times[:1]
	for _, t := range times[1:] {
		if math.Abs(t.ScoreTime-deduped[len(deduped)-1].ScoreTime) < timeDedupEpsilon {
			continue
		}
		deduped = append(deduped, t)
	}
	return deduped
}

// CutNoteArrays slices both note arrays into overlapping windows around the
// coarse alignment nodes. Window i spans alignment nodes [i, i+windowSize]
// widened by the fuzziness margins; the loop runs while i+windowSize is a
// valid node index, so len(times) nodes produce len(times)-windowSize windows
// and the last window ends at the final node. Fewer than two nodes yield a
// single window holding the full arrays.
func CutNoteArrays(scoreNotes, performanceNotes NoteArray, times []TimeAlignment, sfuzziness, pfuzziness float64, windowSize int, pfuzzinessRelativeToTempo bool) (scoreWindows, performanceWindows []NoteArray) {
	if len(times) < 2 {
		return []NoteArray{scoreNotes}, []NoteArray{performanceNotes}
	}

	for i := 0; i+windowSize < len(times); i++ {
		startScore := times[i].ScoreTime
		endScore := times[i+windowSize].ScoreTime
		startPerf := times[i].PerformanceTime
		endPerf := times[i+windowSize].PerformanceTime

		perfMargin := pfuzziness
		if pfuzzinessRelativeToTempo {
			tempoRatio := (endPerf - startPerf) / math.Max(endScore-startScore, 1e-6)
			perfMargin = pfuzziness * math.Max(tempoRatio, 1e-6)
		}

		var windowScore NoteArray
		for _, note := range scoreNotes {
			if note.OnsetBeat >= startScore-sfuzziness && note.OnsetBeat <= endScore+sfuzziness {
				windowScore = append(windowScore, note)
			}
		}

		var windowPerf NoteArray
		for _, note := range performanceNotes {
			if note.OnsetSec >= startPerf-perfMargin && note.OnsetSec <= endPerf+perfMargin {
				windowPerf = append(windowPerf, note)
			}
		}

		scoreWindows = append(scoreWindows, windowScore)
		performanceWindows = append(performanceWindows, windowPerf)
	}

	return scoreWindows, performanceWindows
}

// interpolatorFromTimes builds a score-time to performance-time interpolator
// over the alignment nodes
func interpolatorFromTimes(times []TimeAlignment) (*common.LinearInterp, error) {
	xs := make([]float64, len(times))
	ys := make([]float64, len(times))
	for i, t := range times {
		xs[i] = t.ScoreTime
		ys[i] = t.PerformanceTime
	}
	return common.NewLinearInterp(xs, ys)
}
