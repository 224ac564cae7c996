package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	adapthttp "healthtracker/internal/adapter/http"
	"healthtracker/internal/adapter/metrics"
	"healthtracker/internal/app"
	"healthtracker/internal/config"
)

const sessionPurgeInterval = time.Hour

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.close()
	logger.Info().Str("store", cfg.Store).Msg("store ready")

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("close kafka publisher")
		}
	}()
	if publisher.Enabled() {
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaRiskTopic).Msg("publishing risk assessments")
	}

	m := metrics.New()
	risk := app.NewRiskService(st.repo, st.repo,
		app.WithPublisher(publisher),
		app.WithRecorder(m),
		app.WithLogger(logger.With().Str("component", "risk").Logger()),
	)
	auth := app.NewAuthService(st.repo, st.sessions)

	srv := adapthttp.New(adapthttp.Services{
		Patients:   app.NewPatientService(st.repo),
		Records:    app.NewHealthRecordService(st.repo, st.repo, risk, logger),
		Risk:       risk,
		Screenings: app.NewScreeningService(st.repo, st.repo),
		Diabetes:   app.NewDiabetesService(st.repo, st.repo),
		Charts:     app.NewChartsService(st.repo, st.repo),
		Export:     app.NewExportService(st.repo, st.repo),
		Auth:       auth,
	}, cfg.WebDir).
		WithLogger(logger).
		WithMetrics(m, m.Handler()).
		WithPinger(st)

	if cfg.SSOEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			return err
		}
		srv.WithOIDC(oidcCfg)
		logger.Info().Str("issuer", cfg.OIDCIssuer).Msg("sso enabled")
	}
	if cfg.ForwardAuth {
		logger.Info().Msg("trusting Remote-User from the reverse proxy")
		srv.WithForwardAuth()
	}
	if cfg.DisableAuth {
		logger.Warn().Msg("authentication disabled")
		srv.WithoutAuth()
	}

	go purgeSessions(ctx, auth, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func purgeSessions(ctx context.Context, auth *app.AuthService, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.Warn().Err(err).Msg("purge expired sessions")
			}
		}
	}
}
