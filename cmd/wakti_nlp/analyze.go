package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt>",
	Short: "Break a website request into features",
	Long: `Detects the business type and the features a website request asks for,
ordered by build priority. Features that need configuration are marked for the wizard.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeSummary bool
	analyzeBrief   bool
	analyzeJSON    bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSummary, "summary", false, "Print the short feature summary")
	analyzeCmd.Flags().BoolVar(&analyzeBrief, "brief", false, "Print the structured build brief with no wizard configuration")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analyzed request as JSON")
	analyzeCmd.MarkFlagsMutuallyExclusive("summary", "brief", "json")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	analyzer, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}

	req := analyzer.Analyze(prompt)
	out := cmd.OutOrStdout()

	switch {
	case analyzeJSON:
		return printJSON(out, req)
	case analyzeSummary:
		_, err = fmt.Fprintln(out, features.Summary(req))
		return err
	case analyzeBrief:
		_, err = fmt.Fprint(out, features.StructuredPrompt(req, nil))
		return err
	default:
		observability.NewPrinter(out).PrintAnalysis(req)
		return nil
	}
}
