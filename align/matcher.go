package align

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-align/algorithms/stats"
	"github.com/RyanBlaney/sonido-align/logging"
)

// CoarseNodeLength is the score-time node length, in beats, handed to the
// initial coarse DTW pass. The fine per-window pass is handed
// Config.ScoreFineNodeLength instead. AlignmentTimesFromDTW places nodes at
// piano-roll resolution, so neither value changes the node spacing.
const CoarseNodeLength = 4.0

// AutomaticNoteMatcher orchestrates the full alignment pipeline: a coarse
// piano-roll DTW pass, windowing around the resulting time map, per-window
// symbolic matching and global mending.
// WHY: score and performance disagree both globally (tempo) and locally
// (ornaments, errors); the coarse/fine split handles the first, the per-pitch
// combinatorial matching the second.
type AutomaticNoteMatcher struct {
	config          Config
	noteMatcher     *stats.DynamicTimeWarping
	symbolicMatcher *SequenceAugmentedGreedyMatcher
	greedyMatcher   func(NoteArray, NoteArray) AlignmentVector
}

// NewAutomaticNoteMatcher creates a matcher with the default configuration
func NewAutomaticNoteMatcher() *AutomaticNoteMatcher {
	m, _ := NewAutomaticNoteMatcherWithConfig(DefaultConfig())
	return m
}

// NewAutomaticNoteMatcherWithConfig creates a matcher with a custom
// configuration, validating it at entry
func NewAutomaticNoteMatcherWithConfig(config Config) (*AutomaticNoteMatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &AutomaticNoteMatcher{
		config:          config,
		noteMatcher:     stats.NewDynamicTimeWarping(),
		symbolicMatcher: NewSequenceAugmentedGreedyMatcher(),
		greedyMatcher:   SimpleGreedyMatch,
	}, nil
}

// Config returns the matcher's configuration
func (m *AutomaticNoteMatcher) Config() Config {
	return m.config
}

// SetSeed makes the combinatorial subset sampling reproducible
func (m *AutomaticNoteMatcher) SetSeed(seed int64) {
	m.symbolicMatcher = NewSeededSequenceAugmentedGreedyMatcher(seed)
}

// Align aligns score notes against performance notes and returns one
// alignment record per note id. An empty side is not an error: it yields the
// all-deletions or all-insertions alignment.
func (m *AutomaticNoteMatcher) Align(scoreNotes, performanceNotes NoteArray) (AlignmentVector, error) {
	if len(scoreNotes) == 0 || len(performanceNotes) == 0 {
		return degenerateAlignment(scoreNotes, performanceNotes), nil
	}

	start := time.Now()

	// Step 1: coarse DTW time map
	coarseTimes, err := AlignmentTimesFromDTW(
		scoreNotes, performanceNotes, m.noteMatcher,
		CoarseNodeLength, m.config.STimeDiv, m.config.PTimeDiv,
	)
	if err != nil {
		return nil, fmt.Errorf("coarse DTW pass failed: %w", err)
	}
	m.logStage("coarse DTW pass", &start)

	// Step 2: windowing
	scoreWindows, perfWindows := CutNoteArrays(
		scoreNotes, performanceNotes, coarseTimes,
		m.config.SFuzziness, m.config.PFuzziness,
		m.config.WindowSize, m.config.PFuzzinessRelativeToTempo,
	)
	m.logStage("cutting", &start)

	// Step 3: per-window matching
	windowAlignments := make([]AlignmentVector, len(scoreWindows))
	for windowID := range scoreWindows {
		windowAlignments[windowID], err = m.matchWindow(
			scoreWindows[windowID], perfWindows[windowID], coarseTimes, windowID,
		)
		if err != nil {
			return nil, fmt.Errorf("window %d matching failed: %w", windowID, err)
		}
	}
	m.logStage("fine passes and symbolic matching", &start)

	// Step 4: mending
	global := MendNoteAlignments(windowAlignments, scoreNotes, performanceNotes, coarseTimes, m.config.MaxTraversalDepth)
	m.logStage("mending", &start)

	return global, nil
}

// matchWindow aligns a single window according to the configured alignment
// type. Unknown types behave as "linear".
func (m *AutomaticNoteMatcher) matchWindow(scoreWindow, perfWindow NoteArray, coarseTimes []TimeAlignment, windowID int) (AlignmentVector, error) {
	if m.config.AlignmentType == AlignmentTypeGreedy {
		return m.greedyMatcher(scoreWindow, perfWindow), nil
	}

	var windowTimes []TimeAlignment

	if m.config.AlignmentType == AlignmentTypeDTW &&
		len(scoreWindow) > 0 && len(perfWindow) > 0 {
		fineTimes, err := AlignmentTimesFromDTW(
			scoreWindow, perfWindow, m.noteMatcher,
			m.config.ScoreFineNodeLength, m.config.STimeDiv, m.config.PTimeDiv,
		)
		if err != nil {
			return nil, err
		}
		windowTimes = fineTimes
	} else if windowID+1 < len(coarseTimes) {
		// Linear behavior: bound the window by its two coarse nodes. Empty
		// windows under "dtw" take the same route.
		windowTimes = []TimeAlignment{coarseTimes[windowID], coarseTimes[windowID+1]}
	}

	return m.symbolicMatcher.Match(scoreWindow, perfWindow, windowTimes, m.config.ShiftOnsets, m.config.CapCombinations), nil
}

// logStage emits stage timing when verbose and resets the stage clock
func (m *AutomaticNoteMatcher) logStage(stage string, start *time.Time) {
	if !m.config.Verbose {
		return
	}
	logging.Info("alignment stage complete", logging.Fields{
		"stage":   stage,
		"elapsed": time.Since(*start).String(),
	})
	*start = time.Now()
}

// degenerateAlignment covers the empty-side cases without running the
// pipeline
func degenerateAlignment(scoreNotes, performanceNotes NoteArray) AlignmentVector {
	alignment := make(AlignmentVector, 0, len(scoreNotes)+len(performanceNotes))
	for _, note := range scoreNotes {
		alignment = append(alignment, NewDeletion(note.ID))
	}
	for _, note := range performanceNotes {
		alignment = append(alignment, NewInsertion(note.ID))
	}
	return alignment
}

// Align is the package-level convenience entry point: it aligns with the
// given configuration, or the defaults when config is nil.
func Align(scoreNotes, performanceNotes NoteArray, config *Config) (AlignmentVector, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}

	matcher, err := NewAutomaticNoteMatcherWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return matcher.Align(scoreNotes, performanceNotes)
}
