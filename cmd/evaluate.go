package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-align/align"
)

var labelNames []string

func init() {
	evaluateCmd.Flags().StringSliceVar(&labelNames, "labels", []string{"match"}, "labels of interest: match, insertion, deletion")
	rootCmd.AddCommand(evaluateCmd)
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <predicted.json> <truth.json>",
	Short: "Score a predicted alignment against ground truth",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		predicted, err := readAlignment(args[0])
		if err != nil {
			return err
		}

		truth, err := readAlignment(args[1])
		if err != nil {
			return err
		}

		labels, err := parseLabels(labelNames)
		if err != nil {
			return err
		}

		result := align.FScoreAlignments(predicted, truth, labels)
		fmt.Printf("precision: %.4f\nrecall:    %.4f\nf-score:   %.4f\n", result.Precision, result.Recall, result.FScore)
		return nil
	},
}

func readAlignment(path string) (align.AlignmentVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()
	return align.ReadAlignmentJSON(f)
}

func parseLabels(names []string) ([]align.Label, error) {
	labels := make([]align.Label, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "match":
			labels = append(labels, align.MatchLabel)
		case "insertion":
			labels = append(labels, align.InsertionLabel)
		case "deletion":
			labels = append(labels, align.DeletionLabel)
		default:
			return nil, fmt.Errorf("unknown label %q", name)
		}
	}
	return labels, nil
}
