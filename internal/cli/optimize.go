package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	optimizeExamples string
	optimizeFeedback string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <template>",
	Short: "Ask the model to rewrite a prompt template",
	Long: `Rewrites one of the learned templates (memory_classification,
memory_extraction, memory_importance, memory_updating) from a JSON file of
examples and optional feedback. The revision history is kept alongside the
active templates.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeExamples, "examples", "e", "", "JSON file with example inputs and expected outputs (required)")
	optimizeCmd.Flags().StringVar(&optimizeFeedback, "feedback", "", "Feedback JSON")
	optimizeCmd.MarkFlagRequired("examples")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(optimizeExamples)
	if err != nil {
		return fmt.Errorf("read examples: %w", err)
	}
	var examples []map[string]any
	if err := json.Unmarshal(data, &examples); err != nil {
		return fmt.Errorf("parse examples: %w", err)
	}

	var feedback map[string]any
	if optimizeFeedback != "" {
		if err := json.Unmarshal([]byte(optimizeFeedback), &feedback); err != nil {
			return fmt.Errorf("parse --feedback: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, closer, err := openSystem(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	optimized, err := sys.OptimizePrompt(cmd.Context(), args[0], examples, feedback)
	if err != nil {
		return err
	}
	fmt.Println(optimized)
	return nil
}
