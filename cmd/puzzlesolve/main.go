// Command puzzlesolve is a CLI front end over the dbchoco and evolmino
// solvers: `puzzlesolve solve dbchoco <url>` / `puzzlesolve solve evolmino
// <url>`, with a root-command/hidden-debug-flag shape and per-genre entry
// points with ASCII rendering.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "puzzlesolve",
		Short: "puzzlesolve",
		Long:  `A CLI tool to solve Doublechoco and Evolmino puzzles.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newSolveCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	if err := rootCmd.PersistentFlags().MarkHidden("debug"); err != nil {
		log.Panic(err.Error())
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
