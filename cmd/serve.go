package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sanjaykumaran16/smart-privacy-firewall/config"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/analyzer"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/api"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/classifier"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/discovery"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/notify"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/scraper"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/storage/sqlite"
)

// serveCmd is the cobra command that starts the privacy firewall API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the privacy firewall api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the privacy firewall API server
func serve(ctx context.Context) error {
	cfg := config.New()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	defer func() { _ = store.Close() }()

	log.Info().Str("path", store.Path()).Msg("store opened")

	sc, err := scraper.New(
		scraper.WithTimeout(cfg.FetchTimeout),
		scraper.WithMaxBodySize(cfg.MaxPolicySize),
	)
	if err != nil {
		return fmt.Errorf("setting up scraper: %w", err)
	}

	cl := classifier.New(
		classifier.WithBaseURL(cfg.ClassifierURL),
		classifier.WithHTTPClient(&http.Client{Timeout: cfg.ClassifyTimeout}),
	)

	analyzerOpts := []analyzer.Option{}

	if notifier := setupNotifier(cfg); notifier != nil {
		analyzerOpts = append(analyzerOpts, analyzer.WithNotifier(notifier))
	}

	a := analyzer.New(sc, cl, store, analyzerOpts...)

	handler := api.NewRouter(a, store, discovery.New(discovery.WithProbeTimeout(cfg.FetchTimeout)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("classifier", cfg.ClassifierURL).Msg("starting privacy firewall service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// setupNotifier initializes the webhook notifier from config, returning nil when unconfigured
func setupNotifier(cfg *config.Config) *notify.Client {
	if cfg.WebhookURL == "" {
		log.Info().Msg("webhook notifications not configured, skipping")
		return nil
	}

	client, err := notify.New(cfg.WebhookURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize webhook client")
		return nil
	}

	log.Info().Msg("webhook notifications configured")

	return client
}
