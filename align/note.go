package align

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Note is an immutable record describing one notated or sounded note.
// Score notes populate the beat fields, performance notes the second fields;
// pitch and id are common to both. The ancillary quarter/div/tick fields are
// carried for interoperability with symbolic-music toolchains.
type Note struct {
	// Score note fields
	OnsetBeat       float64 `json:"onset_beat"`
	DurationBeat    float64 `json:"duration_beat"`
	OnsetQuarter    float64 `json:"onset_quarter,omitempty"`
	DurationQuarter float64 `json:"duration_quarter,omitempty"`
	OnsetDiv        int     `json:"onset_div,omitempty"`
	DurationDiv     int     `json:"duration_div,omitempty"`

	// Performance note fields
	OnsetSec     float64 `json:"onset_sec"`
	DurationSec  float64 `json:"duration_sec"`
	OnsetTick    int     `json:"onset_tick,omitempty"`
	DurationTick int     `json:"duration_tick,omitempty"`
	Velocity     int     `json:"velocity,omitempty"`
	Track        int     `json:"track,omitempty"`
	Channel      int     `json:"channel,omitempty"`

	// Common fields
	Pitch  int    `json:"pitch"`
	Voice  int    `json:"voice,omitempty"`
	ID     string `json:"id"`
	DivsPQ int    `json:"divs_pq,omitempty"`
}

// NewScoreNote creates a note populated on the beat-time fields
func NewScoreNote(onsetBeat, durationBeat float64, pitch int, id string) Note {
	return Note{
		OnsetBeat:    onsetBeat,
		DurationBeat: durationBeat,
		Pitch:        pitch,
		ID:           id,
	}
}

// NewPerformanceNote creates a note populated on the second-time fields
func NewPerformanceNote(onsetSec, durationSec float64, pitch, velocity int, id string) Note {
	return Note{
		OnsetSec:    onsetSec,
		DurationSec: durationSec,
		Pitch:       pitch,
		Velocity:    velocity,
		ID:          id,
	}
}

// NoteArray is an ordered sequence of notes. Order is the caller's; no sort
// is implied and arrays are never mutated once handed to the aligner.
type NoteArray []Note

// FilterPitch returns the notes of the given pitch, preserving order
func (na NoteArray) FilterPitch(pitch int) NoteArray {
	var result NoteArray
	for _, note := range na {
		if note.Pitch == pitch {
			result = append(result, note)
		}
	}
	return result
}

// UniquePitches returns the distinct pitches in ascending order
func (na NoteArray) UniquePitches() []int {
	seen := make(map[int]bool)
	for _, note := range na {
		seen[note.Pitch] = true
	}

	pitches := make([]int, 0, len(seen))
	for pitch := range seen {
		pitches = append(pitches, pitch)
	}
	sort.Ints(pitches)
	return pitches
}

// OnsetsBeat returns the beat-time onsets in array order
func (na NoteArray) OnsetsBeat() []float64 {
	onsets := make([]float64, len(na))
	for i, note := range na {
		onsets[i] = note.OnsetBeat
	}
	return onsets
}

// OnsetsSec returns the second-time onsets in array order
func (na NoteArray) OnsetsSec() []float64 {
	onsets := make([]float64, len(na))
	for i, note := range na {
		onsets[i] = note.OnsetSec
	}
	return onsets
}

// Label tags an alignment record as a match, insertion or deletion
type Label int

const (
	MatchLabel Label = iota
	InsertionLabel
	DeletionLabel
)

func (l Label) String() string {
	switch l {
	case MatchLabel:
		return "match"
	case InsertionLabel:
		return "insertion"
	case DeletionLabel:
		return "deletion"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the label as its string form
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a label from its string form
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "match":
		*l = MatchLabel
	case "insertion":
		*l = InsertionLabel
	case "deletion":
		*l = DeletionLabel
	default:
		return fmt.Errorf("align: unknown alignment label %q", s)
	}
	return nil
}

// Alignment relates a score note and/or a performance note by id.
// MATCH carries both ids, DELETION only the score id, INSERTION only the
// performance id.
type Alignment struct {
	Label         Label  `json:"label"`
	ScoreID       string `json:"score_id,omitempty"`
	PerformanceID string `json:"performance_id,omitempty"`
}

// NewMatch creates a MATCH record
func NewMatch(scoreID, performanceID string) Alignment {
	return Alignment{Label: MatchLabel, ScoreID: scoreID, PerformanceID: performanceID}
}

// NewDeletion creates a DELETION record for a score note
func NewDeletion(scoreID string) Alignment {
	return Alignment{Label: DeletionLabel, ScoreID: scoreID}
}

// NewInsertion creates an INSERTION record for a performance note
func NewInsertion(performanceID string) Alignment {
	return Alignment{Label: InsertionLabel, PerformanceID: performanceID}
}

// AlignmentVector is a flat sequence of alignment records. Consumers should
// treat it as a set; ordering beyond the uniqueness invariants is not part
// of the contract.
type AlignmentVector []Alignment
