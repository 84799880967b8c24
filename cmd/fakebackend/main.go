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
	"github.com/jrsteele09/go-finance-client/backendfake"
	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/jrsteele09/go-finance-client/internal/logging"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running fake backend")
	}
	log.Info().Msg("Fake backend stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	log.Logger = logging.New(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	backend := backendfake.New(c.GetJWTSecret(), backendfake.WithTokenExpiry(c.GetTokenExpiry()))
	if err := seedMasterUser(backend, c); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", backend.MetricsHandler())
	mux.Handle("/", backend)
	server := &http.Server{Addr: c.GetPort(), Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(server)
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(server)
	})
	return g.Wait()
}

// seedMasterUser creates the master account from configuration so the admin
// panel can be reached on a fresh start.
func seedMasterUser(backend *backendfake.Server, c config.FakeBackendConfig) error {
	username, password := c.GetMasterUsername(), c.GetMasterPassword()
	if username == "" || password == "" {
		log.Warn().Msg("MASTER_USERNAME or MASTER_PASSWORD not set, no master user seeded")
		return nil
	}
	if err := backend.AddMasterUser(username, password, sessions.RoleMaster); err != nil {
		return fmt.Errorf("seed master user: %w", err)
	}
	log.Info().Str("username", username).Msg("Master user seeded")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Fake backend listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
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
