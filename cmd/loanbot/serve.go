package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/loan-assistant/api"
	"github.com/warp/loan-assistant/config"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/factory"
	"github.com/warp/loan-assistant/knowledge"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the loan assistant HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "HTTP server port")
	serveCmd.Flags().String("source", config.SourceFiles, "where policy and roster come from: files or sqlite")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("source", serveCmd.Flags().Lookup("source"))
}

// bandTable picks the chat band table: a file, then inline config, then
// the built-in table.
func bandTable(cfg config.ChatConfig) (eligibility.BandTable, error) {
	f := factory.NewBandFactory()
	switch {
	case cfg.BandsFile != "":
		return f.LoadFile(cfg.BandsFile)
	case len(cfg.Bands) > 0:
		return f.FromMap(cfg.Bands)
	default:
		return eligibility.DefaultBandTable(), nil
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting the loanbot", zap.String("version", version), zap.String("source", cfg.Source))

	bands, err := bandTable(cfg.Chat)
	if err != nil {
		return fmt.Errorf("loading band table: %w", err)
	}

	src, closeFn, err := openSources(cfg)
	if err != nil {
		return fmt.Errorf("opening sources: %w", err)
	}
	defer closeFn()

	// A base that is not ready still serves: every evaluation escalates.
	base := knowledge.NewBase(ctx, src, logger)
	handler := api.NewHandler(base, bands, logger)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("ready", base.Current().Ready()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
