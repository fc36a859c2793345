package align

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadNoteArrayJSON decodes a JSON array of notes
func ReadNoteArrayJSON(r io.Reader) (NoteArray, error) {
	var notes NoteArray
	if err := json.NewDecoder(r).Decode(&notes); err != nil {
		return nil, fmt.Errorf("could not decode note array: %w", err)
	}
	return notes, nil
}

// ReadAlignmentJSON decodes a JSON array of alignment records
func ReadAlignmentJSON(r io.Reader) (AlignmentVector, error) {
	var alignment AlignmentVector
	if err := json.NewDecoder(r).Decode(&alignment); err != nil {
		return nil, fmt.Errorf("could not decode alignment: %w", err)
	}
	return alignment, nil
}

// WriteAlignmentJSON encodes alignment records as indented JSON
func WriteAlignmentJSON(w io.Writer, alignment AlignmentVector) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(alignment); err != nil {
		return fmt.Errorf("could not encode alignment: %w", err)
	}
	return nil
}
