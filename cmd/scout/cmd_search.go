package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"midnightscout/internal/export"
	"midnightscout/internal/leads"
	"midnightscout/internal/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	minRating     float64
	format        string
	exportPath    string
	searchTimeout time.Duration
)

// searchCmd runs one search without the UI.
var searchCmd = &cobra.Command{
	Use:   "search [industry] [city]",
	Short: "Run one lead search and print the results",
	Long: `Runs a single search and prints the leads as a table or as JSON.

Example:
  scout search Dentist "Austin, TX" --min-rating 4 --export leads.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	return searchAndPrint(cmd.Context(), cmd.OutOrStdout(), newSearcher(cfg),
		args[0], args[1], timeoutOr(searchTimeout, cfg.Timeouts.Search))
}

// searchAndPrint runs the search, applies --min-rating and writes the output.
func searchAndPrint(ctx context.Context, out io.Writer, s search.Searcher, industry, city string, timeout time.Duration) error {
	switch format {
	case "table", "json":
	default:
		return fmt.Errorf("unknown format %q (valid: table, json)", format)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	logger.Info("Searching", zap.String("industry", industry), zap.String("city", city))
	bs, err := s.Search(ctx, industry, city)
	if err != nil {
		logger.Error("Search failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return fmt.Errorf("search failed: %w", err)
	}
	visible := leads.Filter(bs, leads.FilterState{MinRating: minRating})
	logger.Info("Search complete",
		zap.Int("found", len(bs)),
		zap.Int("shown", len(visible)),
		zap.Duration("took", time.Since(start)))

	if exportPath != "" {
		if err := export.WriteXLSX(exportPath, visible); err != nil {
			return err
		}
		logger.Info("Exported leads", zap.String("path", exportPath), zap.Int("count", len(visible)))
	}

	if format == "json" {
		return export.WriteJSON(out, visible)
	}
	if len(visible) == 0 {
		_, err := fmt.Fprintln(out, "No leads found.")
		return err
	}
	_, err = fmt.Fprintln(out, export.Table(visible))
	return err
}
