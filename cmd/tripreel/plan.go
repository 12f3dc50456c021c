package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/internal/presentation/tui"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/observability"
	"github.com/aretw0/tripreel/pkg/render"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <video-url>",
	Short: "Generate an itinerary for a video and print it",
	Long: `Sends the video URL to the generation service, waits for the answer and
prints the itinerary. Failures are printed as an error banner on stderr and
exit with status 1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		formatOutput, err := formatterFor(format, os.Stdout)
		if err != nil {
			return err
		}

		planLogger := logger
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug && !cmd.Flags().Changed("log-level") && cfg.LogLevel == "info" {
			// Request logs would interleave with the output; keep warnings only.
			planLogger, err = logging.NewWithFormat(os.Stderr, slog.LevelWarn, cfg.LogFormat)
			if err != nil {
				return err
			}
		}

		planner, err := tripreel.New(cfg.BackendURL,
			tripreel.WithLogger(planLogger),
			tripreel.WithTimeout(cfg.RequestTimeout),
			tripreel.WithLifecycleHooks(observability.LogHooks(planLogger)),
		)
		if err != nil {
			return err
		}

		if tui.IsTerminal(os.Stderr) {
			fmt.Fprintln(os.Stderr, tui.Busy("Generating itinerary for "+args[0]+"…"))
		}

		state, err := planner.Plan(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if state.Phase == domain.PhaseFailed {
			fmt.Fprintln(os.Stderr, tui.ErrorBanner(render.ScreenFor(state).Banner))
			return errReported
		}

		out, err := formatOutput(state)
		if err != nil {
			return fmt.Errorf("failed to render itinerary: %w", err)
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, table, json or mermaid")
}
