package cli

import (
	"github.com/spf13/cobra"
)

// StageOptions are the per-invocation flags shared by the stage commands.
// Values left unset fall back to the environment (SEARCH_KEYWORD,
// MAX_RESULTS) so the orchestrator can configure runs either way.
type StageOptions struct {
	Keyword    string
	MaxResults int
}

func addKeywordFlag(cmd *cobra.Command, opts *StageOptions) {
	cmd.Flags().StringVarP(&opts.Keyword, "keyword", "k", "",
		"Comma-separated search keywords, e.g. 'kpop,music' (default: SEARCH_KEYWORD env)")
}

func addMaxResultsFlag(cmd *cobra.Command, opts *StageOptions) {
	cmd.Flags().IntVarP(&opts.MaxResults, "max-results", "n", 0,
		"Maximum results per keyword (default: MAX_RESULTS env, else 50)")
}

func NewExtractCmd() *cobra.Command {
	opts := &StageOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch search results and write the raw JSON artifact",
		RunE: func(c *cobra.Command, args []string) error {
			return runExtract(c.Context(), opts)
		},
	}
	addKeywordFlag(cmd, opts)
	addMaxResultsFlag(cmd, opts)
	return cmd
}

func NewTransformCmd() *cobra.Command {
	opts := &StageOptions{}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Reshape the raw JSON artifact into the tabular CSV artifact",
		RunE: func(c *cobra.Command, args []string) error {
			return runTransform(c.Context(), opts)
		},
	}
	addKeywordFlag(cmd, opts)
	return cmd
}

func NewLoadCmd() *cobra.Command {
	opts := &StageOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert the CSV artifact into the target table",
		RunE: func(c *cobra.Command, args []string) error {
			return runLoad(c.Context(), opts)
		},
	}
	addKeywordFlag(cmd, opts)
	return cmd
}

func NewRunCmd() *cobra.Command {
	opts := &StageOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run extract, transform and load in order, halting on failure",
		RunE: func(c *cobra.Command, args []string) error {
			return runPipeline(c.Context(), opts)
		},
	}
	addKeywordFlag(cmd, opts)
	addMaxResultsFlag(cmd, opts)
	return cmd
}
