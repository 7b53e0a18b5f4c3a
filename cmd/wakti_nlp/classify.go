package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/cache"
	"github.com/wakti/wakti-nlp/internal/fetch"
	"github.com/wakti/wakti-nlp/internal/ingestion"
	"github.com/wakti/wakti-nlp/internal/observability"
	"github.com/wakti/wakti-nlp/internal/rendering"
	"github.com/wakti/wakti-nlp/internal/results"
	"github.com/wakti/wakti-nlp/internal/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [files...]",
	Short: "Classify search result snippets as match results or generic rows",
	Long: `Reads search result snippets from JSON or HTML files, or fetches them from --url,
and prints them as a match results table when any snippet reads like a game score.
Otherwise every snippet is listed by title and source.`,
	RunE: runClassify,
}

var (
	classifyURL      string
	classifyEngine   string
	classifyFormat   string
	classifyTemplate string
	classifyOutput   string
	classifyBrowser  bool
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyURL, "url", "u", "", "Fetch snippets from a search results page or API URL")
	classifyCmd.Flags().StringVarP(&classifyEngine, "engine", "e", "", "Search engine of HTML input (duckduckgo, bing, google, searxng); detected when empty")
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "table", "Output format: table, json, html or markdown")
	classifyCmd.Flags().StringVar(&classifyTemplate, "template", "", "Custom html/template file for --format html")
	classifyCmd.Flags().StringVarP(&classifyOutput, "out", "o", "", "Write output to a file instead of stdout")
	classifyCmd.Flags().BoolVar(&classifyBrowser, "browser", false, "Render the page in headless Chrome when static HTML has no results")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if classifyURL == "" && len(args) == 0 {
		return fmt.Errorf("provide at least one input file or --url")
	}
	if classifyURL != "" && len(args) > 0 {
		return fmt.Errorf("input files and --url are mutually exclusive")
	}
	switch classifyFormat {
	case "table", "json", "html", "markdown":
	default:
		return fmt.Errorf("unknown format %q (want table, json, html or markdown)", classifyFormat)
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

	opts := &ingestion.Options{
		UseBrowser: classifyBrowser || cfg.Fetch.UseBrowser,
		Logger:     logger,
	}
	if classifyEngine != "" {
		opts.Engine = fetch.ParseEngine(classifyEngine)
	}

	var snippets []types.SearchSnippet
	if classifyURL != "" {
		fetchOpts := fetch.DefaultOptions()
		fetchOpts.Timeout = cfg.Fetch.Timeout
		opts.Fetcher = fetch.NewCachedFetcher(cache.Nop{}, &fetch.CachedFetcherConfig{
			Options: fetchOpts,
			Logger:  logger,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Fetch.Timeout)
		defer cancel()

		fetched, meta, err := ingestion.FromURL(ctx, classifyURL, opts)
		if err != nil {
			return fmt.Errorf("failed to load snippets from %s: %w", classifyURL, err)
		}
		logger.Debug("loaded snippets", zap.String("source", meta.Source), zap.String("format", meta.Format), zap.Int("count", meta.SnippetCount))
		snippets = fetched
	} else {
		for _, path := range args {
			loaded, meta, err := ingestion.FromFile(path, opts)
			if err != nil {
				return err
			}
			logger.Debug("loaded snippets", zap.String("source", meta.Source), zap.String("format", meta.Format), zap.Int("count", meta.SnippetCount))
			snippets = append(snippets, loaded...)
		}
	}

	result := results.Classify(snippets)
	logger.Debug("classified snippets", zap.String("kind", string(result.Kind)), zap.Int("rows", result.Len()))

	return writeOutput(cmd.OutOrStdout(), classifyOutput, func(w io.Writer) error {
		return renderClassification(w, result)
	})
}

func renderClassification(w io.Writer, result types.ClassifyResult) error {
	switch classifyFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			types.ClassifyResult
			Columns []string `json:"columns"`
		}{result, results.Columns(result.Kind)})
	case "html":
		var (
			html string
			err  error
		)
		if classifyTemplate != "" {
			html, err = rendering.HTMLTableWithTemplate(result, classifyTemplate)
		} else {
			html, err = rendering.HTMLTable(result)
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "markdown":
		_, err := io.WriteString(w, rendering.MarkdownTable(result))
		return err
	default:
		observability.NewPrinter(w).PrintTable(result)
		return nil
	}
}

// writeOutput runs render against stdout, or against path when one is given.
func writeOutput(stdout io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(stdout)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
