package align

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ErrMalformedConfig indicates a numeric configuration value outside its
// valid range. Detected at entry, before any pipeline work starts.
var ErrMalformedConfig = errors.New("align: malformed configuration")

// Alignment type selectors for the per-window matching stage
const (
	AlignmentTypeDTW    = "dtw"
	AlignmentTypeLinear = "linear"
	AlignmentTypeGreedy = "greedy"
)

// Config holds the tunable parameters of the alignment pipeline.
// Zero values are not meaningful defaults; start from DefaultConfig.
type Config struct {
	// AlignmentType selects the per-window matcher: "dtw" runs a fine DTW
	// pass per window, "linear" interpolates between the coarse nodes,
	// "greedy" skips onset-aware matching. Unknown values behave as "linear"
	// to preserve compatibility.
	AlignmentType string `json:"alignment_type" yaml:"alignment_type"`

	// ScoreFineNodeLength is the node length, in beats, handed to the fine
	// per-window DTW pass. AlignmentTimesFromDTW places nodes at piano-roll
	// resolution (1/STimeDiv beats) whatever its value; it must be positive.
	ScoreFineNodeLength float64 `json:"score_fine_node_length" yaml:"score_fine_node_length"`

	// STimeDiv and PTimeDiv set the piano-roll temporal resolution for the
	// score and the performance
	STimeDiv int `json:"s_time_div" yaml:"s_time_div"`
	PTimeDiv int `json:"p_time_div" yaml:"p_time_div"`

	// SFuzziness and PFuzziness widen each window by the given margin, in
	// score beats and performance seconds respectively
	SFuzziness float64 `json:"sfuzziness" yaml:"sfuzziness"`
	PFuzziness float64 `json:"pfuzziness" yaml:"pfuzziness"`

	// WindowSize is the number of coarse intervals per window
	WindowSize int `json:"window_size" yaml:"window_size"`

	// PFuzzinessRelativeToTempo scales PFuzziness by the local tempo ratio
	PFuzzinessRelativeToTempo bool `json:"pfuzziness_relative_to_tempo" yaml:"pfuzziness_relative_to_tempo"`

	// ShiftOnsets subtracts the optimal mean shift in combinatorial scoring
	ShiftOnsets bool `json:"shift_onsets" yaml:"shift_onsets"`

	// CapCombinations bounds the per-pitch combinatorial search; above it,
	// subsets are sampled uniformly at random. Non-positive disables the cap.
	CapCombinations int `json:"cap_combinations" yaml:"cap_combinations"`

	// MaxTraversalDepth is reserved for a future graph-walk conflict
	// resolver in the mender
	MaxTraversalDepth int `json:"max_traversal_depth" yaml:"max_traversal_depth"`

	// Verbose times each pipeline stage through the logging facade
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the pipeline defaults
func DefaultConfig() Config {
	return Config{
		AlignmentType:             AlignmentTypeDTW,
		ScoreFineNodeLength:       0.25,
		STimeDiv:                  16,
		PTimeDiv:                  16,
		SFuzziness:                4.0,
		PFuzziness:                4.0,
		WindowSize:                1,
		PFuzzinessRelativeToTempo: true,
		ShiftOnsets:               false,
		CapCombinations:           10000,
		MaxTraversalDepth:         150,
	}
}

// Validate reports ErrMalformedConfig for numeric values outside their valid
// ranges. Unknown alignment types are not an error; they fall back to
// "linear" behavior at matching time.
func (c Config) Validate() error {
	if c.SFuzziness < 0 {
		return fmt.Errorf("%w: sfuzziness %v is negative", ErrMalformedConfig, c.SFuzziness)
	}
	if c.PFuzziness < 0 {
		return fmt.Errorf("%w: pfuzziness %v is negative", ErrMalformedConfig, c.PFuzziness)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window_size %d must be at least 1", ErrMalformedConfig, c.WindowSize)
	}
	if c.STimeDiv <= 0 {
		return fmt.Errorf("%w: s_time_div %d must be positive", ErrMalformedConfig, c.STimeDiv)
	}
	if c.PTimeDiv <= 0 {
		return fmt.Errorf("%w: p_time_div %d must be positive", ErrMalformedConfig, c.PTimeDiv)
	}
	if c.ScoreFineNodeLength <= 0 {
		return fmt.Errorf("%w: score_fine_node_length %v must be positive", ErrMalformedConfig, c.ScoreFineNodeLength)
	}
	return nil
}

// LoadConfig reads a YAML configuration file, layering it over the defaults
// so missing fields keep their default values
func LoadConfig(fsys fs.FS, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()

	config := DefaultConfig()
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
