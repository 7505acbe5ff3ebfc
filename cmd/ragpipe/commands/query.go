package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question against the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		pipe, _, err := buildPipeline(true, logger)
		if err != nil {
			return err
		}
		if err := loadIndexIfPresent(pipe, logger); err != nil {
			return err
		}
		question := strings.Join(args, " ")
		result, err := pipe.Answer(cmd.Context(), question, queryTopK)
		if err != nil {
			return err
		}
		fmt.Printf("Question: %s\n", result.Question)
		fmt.Printf("Answer: %s\n", result.Answer)
		if len(result.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range result.Sources {
				fmt.Printf("  - %s (%s) score=%.3f\n", src.Title, src.SourceURL, src.Score)
			}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of passages to retrieve (0 uses the configured default)")
}
