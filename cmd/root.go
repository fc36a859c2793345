package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-align/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sonido-align",
	Short: "Align symbolic scores against recorded performances",
	Long: `sonido-align matches every notated score note against a recorded
performance note of the same pitch, or marks it deleted, and flags
unmatched performance notes as insertions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and stage timing")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
