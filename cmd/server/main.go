package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/osa911/portfolio-contact/internal/config"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/server"
	"github.com/osa911/portfolio-contact/internal/version"
)

const shutdownTimeout = 20 * time.Second

var logger *logging.Logger

// loadConfig reads the environment and initializes the global logger from it
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if err := logging.InitLogger(&logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Requests:   cfg.Log.Requests,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logging.GetGlobalLogger()

	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "contact-api",
	Short: "Portfolio contact form API",
	Long: `contact-api relays contact form submissions from the portfolio site to a
mailbox, via SMTP or the Resend API, with per-client rate limiting.`,
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		defer logger.Close()

		server.ConfigureGinMode(cfg)
		logger.Info("Starting contact API %s in %s mode", version.Version, cfg.Environment)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := server.NewApp(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to start: %v", err)
			os.Exit(1)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(app.Server.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.Server.Shutdown(shutdownCtx)
		})

		runErr := g.Wait()

		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("Cleanup finished with errors: %v", err)
		}

		if runErr != nil {
			logger.Error("Server stopped: %v", runErr)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the configured mail transport accepts our credentials",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		defer logger.Close()

		app, err := server.NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize: %v", err)
			os.Exit(1)
		}
		defer app.Close(context.Background())

		s := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Verifying %s transport...", app.Dispatcher.Transport().Name())
		s.Start()
		err = app.Dispatcher.Verify(cmd.Context())
		s.Stop()

		if err != nil {
			fmt.Printf("✗ Mail transport %s is unavailable: %v\n", app.Dispatcher.Transport().Name(), err)
			os.Exit(1)
		}
		fmt.Printf("✓ Mail transport %s is ready, submissions go to %s\n", app.Dispatcher.Transport().Name(), cfg.Contact.Recipient)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contact-api " + version.Info())
	},
}

func init() {
	rootCmd.PersistentFlags().String("port", "", "Port to listen on (overrides PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
