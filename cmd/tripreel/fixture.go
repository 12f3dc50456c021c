package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/tripreel/internal/adapters/fixture"
	"github.com/spf13/cobra"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture-backend",
	Short: "Serve canned itineraries in place of the generation service",
	Long: `Serves GET /api/generate from fixture files named after video IDs
(<video-id>.yaml or .json). Point --backend at it for local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.FixturesDir
		addr, _ := cmd.Flags().GetString("addr")
		delay, _ := cmd.Flags().GetDuration("delay")

		backend, err := fixture.Load(dir, fixture.WithLogger(logger), fixture.WithDelay(delay))
		if err != nil {
			return err
		}
		logger.Info("fixtures loaded", "dir", dir, "videos", backend.VideoIDs())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           backend.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listenAndServe(ctx, srv, logger)
	},
}

func init() {
	rootCmd.AddCommand(fixtureCmd)
	fixtureCmd.Flags().String("fixtures", "", "Directory of fixture files (default from config, ./fixtures)")
	fixtureCmd.Flags().String("addr", ":8000", "Address to listen on")
	fixtureCmd.Flags().Duration("delay", 0, "Artificial latency added to every answer")
}
