// Package smfio loads performance note arrays from Standard MIDI Files.
// The score side of the aligner comes from structured note data; performances
// usually arrive as recorded MIDI, so this adapter pairs note-on/note-off
// events, converts ticks to seconds through the tempo map and emits notes in
// onset order with sequential ids.
package smfio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-align/align"
)

// ErrNotMetric indicates the SMF uses SMPTE time, which carries no tempo map
// to resolve beats against.
var ErrNotMetric = errors.New("smfio: only metric (ticks per quarter) time format is supported")

const defaultBPM = 120.0

// ReadPerformance reads an SMF file and returns its notes as a performance
// note array
func ReadPerformance(path string) (align.NoteArray, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read midi file: %w", err)
	}

	mid, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse midi file: %w", err)
	}

	return Performance(mid)
}

// Performance converts a parsed SMF into a performance note array. Note ids
// are assigned sequentially (p0, p1, ...) in onset order.
func Performance(mid *smf.SMF) (align.NoteArray, error) {
	resolution, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrNotMetric
	}

	tempoMap := collectTempoChanges(mid)
	clock := newTickClock(tempoMap, int64(resolution.Resolution()))

	type openNote struct {
		tick     int64
		velocity uint8
		track    int
	}

	type channelKey struct {
		channel uint8
		key     uint8
	}

	open := make(map[channelKey][]openNote)
	var notes align.NoteArray

	for trackNo, track := range mid.Tracks {
		var absTick int64
		for _, ev := range track {
			absTick += int64(ev.Delta)

			var ch, key, vel uint8
			if ev.Message.GetNoteStart(&ch, &key, &vel) {
				k := channelKey{channel: ch, key: key}
				open[k] = append(open[k], openNote{tick: absTick, velocity: vel, track: trackNo})
				continue
			}

			if ev.Message.GetNoteEnd(&ch, &key) {
				k := channelKey{channel: ch, key: key}
				pending := open[k]
				if len(pending) == 0 {
					// Dangling note-off, nothing to close
					continue
				}

				// First-on first-off for overlapping same-pitch notes
				on := pending[0]
				open[k] = pending[1:]

				onsetSec := clock.seconds(on.tick)
				offSec := clock.seconds(absTick)

				notes = append(notes, align.Note{
					OnsetSec:     onsetSec,
					DurationSec:  offSec - onsetSec,
					OnsetTick:    int(on.tick),
					DurationTick: int(absTick - on.tick),
					Velocity:     int(on.velocity),
					Track:        on.track,
					Channel:      int(ch),
					Pitch:        int(key),
				})
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].OnsetTick != notes[j].OnsetTick {
			return notes[i].OnsetTick < notes[j].OnsetTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})

	for i := range notes {
		notes[i].ID = fmt.Sprintf("p%d", i)
	}

	return notes, nil
}

// tempoChange is one tempo event on the merged timeline
type tempoChange struct {
	tick int64
	bpm  float64
}

// collectTempoChanges gathers tempo events across all tracks, sorted by tick,
// with the 120 BPM default at tick zero
func collectTempoChanges(mid *smf.SMF) []tempoChange {
	changes := []tempoChange{{tick: 0, bpm: defaultBPM}}

	for _, track := range mid.Tracks {
		var absTick int64
		for _, ev := range track {
			absTick += int64(ev.Delta)

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				changes = append(changes, tempoChange{tick: absTick, bpm: bpm})
			}
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].tick < changes[j].tick
	})

	return changes
}

// tickClock converts absolute ticks to seconds across tempo segments
type tickClock struct {
	changes       []tempoChange
	segmentStarts []float64 // seconds at each tempo change
	ticksPerBeat  int64
}

func newTickClock(changes []tempoChange, ticksPerBeat int64) *tickClock {
	starts := make([]float64, len(changes))
	for i := 1; i < len(changes); i++ {
		deltaTicks := changes[i].tick - changes[i-1].tick
		starts[i] = starts[i-1] + secondsPerTick(changes[i-1].bpm, ticksPerBeat)*float64(deltaTicks)
	}

	return &tickClock{changes: changes, segmentStarts: starts, ticksPerBeat: ticksPerBeat}
}

func secondsPerTick(bpm float64, ticksPerBeat int64) float64 {
	return 60.0 / bpm / float64(ticksPerBeat)
}

// seconds converts an absolute tick to seconds
func (c *tickClock) seconds(tick int64) float64 {
	// Last change at or before tick
	idx := sort.Search(len(c.changes), func(i int) bool {
		return c.changes[i].tick > tick
	}) - 1
	if idx < 0 {
		idx = 0
	}

	change := c.changes[idx]
	return c.segmentStarts[idx] + secondsPerTick(change.bpm, c.ticksPerBeat)*float64(tick-change.tick)
}
