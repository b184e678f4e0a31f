// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ytetl",
		Short: "ytetl - ETL pipeline for YouTube search results",
		Long: `ytetl fetches YouTube search results for a keyword, reshapes them into
tabular rows, and loads them into a relational table. Each stage can run as
a separate scheduled task (extract, transform, load), or all three in order
with "run".`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewExtractCmd(), NewTransformCmd(), NewLoadCmd(), NewRunCmd())

	return rootCmd
}
