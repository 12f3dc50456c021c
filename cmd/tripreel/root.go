package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tripreel/internal/config"
	"github.com/aretw0/tripreel/internal/logging"
	"github.com/spf13/cobra"
)

// errReported marks failures already shown to the user.
var errReported = errors.New("reported")

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "tripreel",
	Short:         "Turn travel videos into day-by-day itineraries",
	Long:          `tripreel sends a travel video URL to an itinerary generation service and renders the day-by-day plan it returns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")

		loaded, err := config.Load(configPath, envFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded

		debug, _ := cmd.Flags().GetBool("debug")
		logger, err = createLogger(cfg, debug)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file with TRIPREEL_* variables")
	rootCmd.PersistentFlags().String("backend", "", "Base URL of the itinerary generation service")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout of a single generation request")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// createLogger writes to stderr so stdout stays clean for output and JSON-RPC.
func createLogger(c config.Config, debug bool) (*slog.Logger, error) {
	level := c.Level()
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, c.LogFormat)
}
