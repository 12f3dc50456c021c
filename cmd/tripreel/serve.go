package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/presentation/tui"
	httpAdapter "github.com/aretw0/tripreel/pkg/adapters/http"
	"github.com/aretw0/tripreel/pkg/observability"
	"github.com/aretw0/tripreel/pkg/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web interface",
	Long: `Starts the single-page web interface. Each browser session gets its own
request lifecycle; Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr)
		}

		metrics := observability.NewMetrics(true)
		hooks := observability.Chain(observability.LogHooks(logger), metrics.Hooks("web"))
		backend := &http.Client{Timeout: cfg.RequestTimeout}

		sessions := session.NewManager(func() (*tripreel.Planner, error) {
			return tripreel.New(cfg.BackendURL,
				tripreel.WithLogger(logger),
				tripreel.WithHTTPClient(backend),
				tripreel.WithLifecycleHooks(hooks),
			)
		}, session.WithTTL(cfg.SessionTTL), session.WithLogger(logger))

		handler, err := httpAdapter.NewHandler(sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRateLimit(cfg.SubmitRate, cfg.SubmitBurst),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithAllowedOrigins(origins...),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go sessions.Run(ctx, 0)

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("starting tripreel web", "version", tripreel.Version, "backend", cfg.BackendURL)
		return listenAndServe(ctx, srv, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Origins allowed to call the JSON routes (default any)")
}
