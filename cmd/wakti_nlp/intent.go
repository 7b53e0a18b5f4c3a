package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/observability"
)

var intentCmd = &cobra.Command{
	Use:   "intent <prompt>",
	Short: "Detect the intent of a build request",
	Long:  "Scores a free-text build request against the intent catalog and reports whether clarifying questions should be asked.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIntent,
}

var (
	intentMultiple bool
	intentJSON     bool
)

func init() {
	intentCmd.Flags().BoolVarP(&intentMultiple, "multiple", "m", false, "Report every intent scoring at least 0.3")
	intentCmd.Flags().BoolVar(&intentJSON, "json", false, "Print JSON instead of a summary box")

	rootCmd.AddCommand(intentCmd)
}

func runIntent(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	detector, err := loadDetector(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	if intentMultiple {
		detected := detector.DetectMultiple(prompt)
		logger.Debug("detected intents", zap.Int("count", len(detected)))
		if intentJSON {
			return printJSON(out, detected)
		}
		printer.PrintIntents(detected)
		return nil
	}

	detected := detector.Detect(prompt)
	logger.Debug("detected intent", zap.String("intent", string(detected.Type)), zap.Float64("confidence", detected.Confidence))
	if intentJSON {
		return printJSON(out, detected)
	}
	printer.PrintIntent(detected)
	return nil
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
