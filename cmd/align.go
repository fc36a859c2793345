package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-align/align"
	"github.com/RyanBlaney/sonido-align/logging"
	"github.com/RyanBlaney/sonido-align/smfio"
)

var (
	configPath    string
	outputPath    string
	alignmentType string
	shiftOnsets   bool
	randomSeed    int64
)

func init() {
	alignCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	alignCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	alignCmd.Flags().StringVar(&alignmentType, "alignment-type", "", "per-window matcher: dtw, linear or greedy")
	alignCmd.Flags().BoolVar(&shiftOnsets, "shift-onsets", false, "subtract the optimal mean shift in combinatorial scoring")
	alignCmd.Flags().Int64Var(&randomSeed, "seed", 0, "seed for combinatorial subset sampling (0 = nondeterministic)")
	rootCmd.AddCommand(alignCmd)
}

// alignmentReport is the JSON document written by the align command
type alignmentReport struct {
	RunID     string                `json:"run_id"`
	Score     string                `json:"score"`
	Perf      string                `json:"performance"`
	Config    align.Config          `json:"config"`
	Alignment align.AlignmentVector `json:"alignment"`
}

var alignCmd = &cobra.Command{
	Use:   "align <score.json> <performance.json|performance.mid>",
	Short: "Align a score against a performance",
	Long: `Aligns a score note array (JSON) against a performance, given either
as a JSON note array or as a Standard MIDI File, and writes the alignment
records as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scoreNotes, err := readNoteArray(args[0])
		if err != nil {
			return err
		}

		perfNotes, err := readPerformance(args[1])
		if err != nil {
			return err
		}

		config := align.DefaultConfig()
		if configPath != "" {
			loaded, err := align.LoadConfig(os.DirFS(filepath.Dir(configPath)), filepath.Base(configPath))
			if err != nil {
				return err
			}
			config = *loaded
		}
		if alignmentType != "" {
			config.AlignmentType = alignmentType
		}
		if shiftOnsets {
			config.ShiftOnsets = true
		}
		config.Verbose = verbose

		matcher, err := align.NewAutomaticNoteMatcherWithConfig(config)
		if err != nil {
			return err
		}
		if randomSeed != 0 {
			matcher.SetSeed(randomSeed)
		}

		alignment, err := matcher.Align(scoreNotes, perfNotes)
		if err != nil {
			return err
		}

		logging.Info("alignment complete", logging.Fields{
			"score_notes": len(scoreNotes),
			"perf_notes":  len(perfNotes),
			"records":     len(alignment),
		})

		report := alignmentReport{
			RunID:     uuid.NewString(),
			Score:     args[0],
			Perf:      args[1],
			Config:    config,
			Alignment: alignment,
		}
		return writeReport(report)
	},
}

func readNoteArray(path string) (align.NoteArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()
	return align.ReadNoteArrayJSON(f)
}

func readPerformance(path string) (align.NoteArray, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".mid" || ext == ".midi" {
		return smfio.ReadPerformance(path)
	}
	return readNoteArray(path)
}

func writeReport(report alignmentReport) error {
	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("could not create %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
