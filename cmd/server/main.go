// Command server runs the SaveEat client core and exposes it to the
// presentation shell as a loopback JSON API.
//
// @title        SaveEat local API
// @version      1.0
// @description  Loopback API exposing the SaveEat client core to the presentation shell.
// @host         localhost:8765
// @BasePath     /
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/api"
	"github.com/Zakyahmed/SaveEat-New/internal/api/handler"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
	"github.com/Zakyahmed/SaveEat-New/internal/infrastructure/backend"
	mongostore "github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db/mongo"
	redisstore "github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db/redis"
	sqlitestore "github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db/sqlite"
	"github.com/Zakyahmed/SaveEat-New/internal/infrastructure/queue"
	"github.com/Zakyahmed/SaveEat-New/internal/pkg/config"
	"github.com/Zakyahmed/SaveEat-New/internal/pkg/tracing"
	"github.com/Zakyahmed/SaveEat-New/pkg/logger"
)

const serviceName = "saveeat-client"

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, logger.Component("tracing"), cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	repo, closeRepo, err := openSessionRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	log.Info().Str("backend", cfg.SessionBackend).Msg("session store ready")

	// --- Backend adapters ---
	client := backend.NewClient(cfg.APIURL, logger.Component("backend"), backend.WithTimeout(cfg.RequestTimeout))
	authAPI := backend.NewAuthAPI(client, logger.Component("auth_api"))
	listingAPI := backend.NewListingAPI(client, logger.Component("listing_api"))
	reservationAPI := backend.NewReservationAPI(client, logger.Component("reservation_api"))
	profileAPI := backend.NewProfileAPI(client, logger.Component("profile_api"))

	// --- Core ---
	dispatcher := queue.NewDispatcher(cfg.RefreshWorkers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	valid := validation.New()
	sessions := service.NewSessionStore(authAPI, repo, valid, logger.Component("session"))
	data := service.NewDataStore(listingAPI, reservationAPI, sessions, dispatcher, valid, logger.Component("data"))
	profiles := service.NewProfileManager(profileAPI, sessions, valid, logger.Component("profile"))

	if cfg.SessionRestore {
		restore(ctx, sessions, data, log)
	}

	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Data:     data,
		Profiles: profiles,
		Ready: map[string]handler.Pinger{
			"session_store": repo,
			"backend":       client,
		},
		Log: logger.Component("http"),
	})

	// The facade only ever listens on loopback: one device, one session.
	addr := "127.0.0.1:" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("api_url", cfg.APIURL).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// restore reloads the persisted session and, when one is found, performs
// the role-based initial load.
func restore(ctx context.Context, sessions *service.SessionStore, data *service.DataStore, log zerolog.Logger) {
	r := sessions.Restore(ctx)
	switch {
	case r.Err != nil:
		log.Warn().Err(r.Err).Msg("session restore failed")
		return
	case r.Notice != "":
		log.Info().Msg(r.Notice)
	}
	if r.Data == nil {
		return
	}
	log.Info().Int64("user_id", r.Data.Identity.ID).Str("role", string(r.Data.Identity.Role)).Msg("session restored")
	if b := data.Bootstrap(ctx); b.Err != nil {
		log.Warn().Err(b.Err).Msg("initial load failed")
	}
}

func openSessionRepository(ctx context.Context, cfg *config.Config) (ports.SessionRepository, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSessionRepository(client, ""), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return mongostore.NewSessionRepository(db), closeFn, nil

	default:
		conn, err := sqlitestore.Open(ctx, sqlitestore.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, nil, err
		}
		return sqlitestore.NewSessionRepository(conn), func() { _ = conn.Close() }, nil
	}
}
