package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/bot-dashboard/auth"
	"github.com/jrsteele09/bot-dashboard/credentials"
	credentialstore "github.com/jrsteele09/bot-dashboard/credentials/pgstore"
	"github.com/jrsteele09/bot-dashboard/dashboard"
	"github.com/jrsteele09/bot-dashboard/identity"
	identitystore "github.com/jrsteele09/bot-dashboard/identity/pgstore"
	"github.com/jrsteele09/bot-dashboard/internal/config"
	"github.com/jrsteele09/bot-dashboard/internal/pgdb"
	"github.com/jrsteele09/bot-dashboard/server"
	"github.com/jrsteele09/bot-dashboard/sessions"
	"github.com/jrsteele09/bot-dashboard/tenants/postgrest"
	"github.com/jrsteele09/bot-dashboard/token/jwt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sessionSweepInterval = time.Minute

func main() {
	config.LoadDotEnv()
	c := config.New()
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgdb.Open(ctx, c.GetCentralDatabaseURL(), c.GetDownstreamTimeout())
	if err != nil {
		return fmt.Errorf("central store: %w", err)
	}
	defer pool.Close()

	creator, err := jwt.NewCreator(c.GetJWTSecret(), c.GetAccessTokenExpiry())
	if err != nil {
		return fmt.Errorf("jwt.NewCreator: %w", err)
	}
	passwords, err := identity.NewPasswordStore(identitystore.NewRepo(pool), creator, c.GetDownstreamTimeout())
	if err != nil {
		return fmt.Errorf("identity.NewPasswordStore: %w", err)
	}

	sessionRepo := sessions.NewInMemoryRepo()
	go sweepSessions(ctx, sessionRepo)

	gateway, err := auth.NewGateway(
		auth.Repos{
			Identities:  passwords,
			Credentials: credentials.NewResolver(credentialstore.NewRepo(pool), c.GetDownstreamTimeout()),
			Sessions:    sessionRepo,
		},
		jwt.NewVerifier(c.GetJWTSecret()),
		auth.PostgresElevatedOpener(c.GetCentralAdminDatabaseURL(), c.GetDownstreamTimeout()),
		auth.Settings{
			DefaultSecret:     c.GetDefaultPassword(),
			MinSecretLength:   c.GetMinPasswordLength(),
			SessionMaxAge:     c.GetMaxSessionAge(),
			DownstreamTimeout: c.GetDownstreamTimeout(),
		},
	)
	if err != nil {
		return fmt.Errorf("auth.NewGateway: %w", err)
	}

	handler, err := server.New(c, server.Deps{
		Gateway:    gateway,
		Tenants:    postgrest.NewFactory(c.GetDownstreamTimeout()),
		Aggregator: dashboard.NewAggregator(c.GetDownstreamTimeout()),
		Health:     pool,
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func sweepSessions(ctx context.Context, repo sessions.Repo) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := repo.DeleteExpired(now); n > 0 {
				log.Debug().Int("count", n).Msg("expired sessions removed")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
