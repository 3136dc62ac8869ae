package main

import (
	"fmt"
	"os"
	"time"

	"midnightscout/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string

	// Logger for headless commands
	logger *zap.Logger
)

// rootCmd launches the interactive lead finder.
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "MidnightScout - find local businesses that need a better web presence",
	Long: `MidnightScout asks Gemini, grounded in Google Maps and Google Search, for
businesses in an industry and city, then lists them with the problems a web
designer could fix and a short pitch for each.

Run without arguments to start the interactive finder with its map view.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive UI logs to a file instead.
		if cmd == cmd.Root() {
			return nil
		}

		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stderr"}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY / API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .scout/scout.yaml or ~/.scout/scout.yaml)")

	rootCmd.Flags().StringVarP(&industry, "industry", "i", "", "Prefill the industry field")
	rootCmd.Flags().StringVar(&city, "city", "", "Prefill the city field")
	rootCmd.Flags().BoolVar(&noMap, "no-map", false, "Hide the map pane")

	searchCmd.Flags().Float64Var(&minRating, "min-rating", 0, "Only print leads rated at least this")
	searchCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	searchCmd.Flags().StringVarP(&exportPath, "export", "o", "", "Also write the leads to this .xlsx file")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 0, "Search timeout (default from config)")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfigPath returns --config or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// effectiveKey applies the --api-key flag over the configured key.
func effectiveKey(configured string) string {
	if apiKey != "" {
		return apiKey
	}
	return configured
}

// timeoutOr returns d unless it is zero.
func timeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
