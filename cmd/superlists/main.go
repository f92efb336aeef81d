package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shaunplee/superlists/internal/accounts"
	"github.com/shaunplee/superlists/internal/bus"
	"github.com/shaunplee/superlists/internal/config"
	"github.com/shaunplee/superlists/internal/db"
	"github.com/shaunplee/superlists/internal/lists"
	"github.com/shaunplee/superlists/internal/mail"
	"github.com/shaunplee/superlists/internal/otel"
	"github.com/shaunplee/superlists/internal/web"
)

const serviceName = "superlists"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("superlists")
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "superlists",
		Short:         "Shared to-do lists web service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			return db.Migrate(cmd.Context(), cfg.DBDSN)
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(*cobra.Command, []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	cleanup, err := otel.Init(ctx, serviceName, cfg.OTLPEndpoint, log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	if err := db.Migrate(ctx, cfg.DBDSN); err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	pool, err := db.OpenPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var events *bus.Bus
	if cfg.NATSURL != "" {
		events, err = bus.New(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer events.Close()
	}

	var sender mail.Sender = mail.LogSender{Log: log.Logger}
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
	}

	listsSvc := lists.NewService(lists.NewGormStore(database, pool), publisher(events), log.Logger)
	accountsSvc := accounts.NewService(
		accounts.NewGormStore(database),
		sender,
		publisher(events),
		accounts.Config{
			SiteBaseURL: cfg.SiteBaseURL,
			TokenTTL:    cfg.TokenTTL,
			SessionTTL:  cfg.SessionTTL,
		},
		log.Logger,
	)

	router, err := web.NewRouter(listsSvc, accountsSvc, web.RouterOptions{
		AllowedOrigins:    cfg.AllowedOrigins,
		RequestsPerMinute: cfg.RequestsPerMinute,
		CookieSecure:      cfg.CookieSecure,
		Log:               log.Logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting superlists")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// publisher keeps a nil *bus.Bus from becoming a non-nil interface value.
func publisher(b *bus.Bus) lists.Publisher {
	if b == nil {
		return nil
	}
	return b
}
