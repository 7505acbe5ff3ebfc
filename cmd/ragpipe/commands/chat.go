package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragpipe/internal/tui"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat over the indexed documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		pipe, cfg, err := buildPipeline(true, logger)
		if err != nil {
			return err
		}
		if err := loadIndexIfPresent(pipe, logger); err != nil {
			return err
		}
		topK := chatTopK
		if topK <= 0 {
			topK = cfg.Retrieval.TopK
		}
		m := tui.New(pipe, topK)
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

func init() {
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 0, "number of passages to retrieve per question (0 uses the configured default)")
}
