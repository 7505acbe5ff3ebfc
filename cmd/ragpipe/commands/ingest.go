package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragpipe/internal/docs"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Chunk, embed, and index documents from JSON, JSONL, or text files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		pipe, _, err := buildPipeline(false, logger)
		if err != nil {
			return err
		}
		// existing entries are kept; ingestion appends
		if err := loadIndexIfPresent(pipe, logger); err != nil {
			return err
		}
		documents, err := docs.LoadFiles(args)
		if err != nil {
			return err
		}
		chunks, err := pipe.Ingest(cmd.Context(), documents)
		if err != nil {
			return err
		}
		if err := pipe.SaveIndex(); err != nil {
			return err
		}
		fmt.Printf("Processed %d documents into %d chunks (index now holds %d)\n",
			len(documents), chunks, pipe.IndexSize())
		return nil
	},
}
