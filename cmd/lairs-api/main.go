// Command lairs-api serves account registration, session tokens and lair
// publishing over HTTP.
//
//	@title						Lairs API
//	@version					1.0
//	@BasePath					/
//	@securityDefinitions.basic	BasicAuth
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/lairbnb/lairs-api/internal/api"
	"github.com/lairbnb/lairs-api/internal/api/handler"
	"github.com/lairbnb/lairs-api/internal/core/security"
	"github.com/lairbnb/lairs-api/internal/core/service"
	"github.com/lairbnb/lairs-api/internal/infrastructure/db/mongo"
	"github.com/lairbnb/lairs-api/internal/infrastructure/db/redis"
	"github.com/lairbnb/lairs-api/internal/infrastructure/queue"
	"github.com/lairbnb/lairs-api/internal/pkg/config"
	"github.com/lairbnb/lairs-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lairs-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "lairs-api",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "lairs-api",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		Timeout:     cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	accounts := mongo.NewAccountRepository(db)
	lairs := mongo.NewLairRepository(db)
	if err := mongo.EnsureIndexes(ctx, accounts, lairs); err != nil {
		return err
	}
	revocations := redis.NewRevocationStore(rdb)

	hasher := security.NewHasher(security.Argon2Params{
		Memory:      cfg.Argon2.MemoryKiB,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
	})
	verifier, err := security.NewVerifier(hasher, log.With().Str("component", "verifier").Logger())
	if err != nil {
		return err
	}
	signed, err := security.NewSignedCodec([]byte(cfg.Auth.TokenSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	gateOpts := []service.GateOption{service.WithRevocationStore(revocations)}
	var legacy *security.LegacyCodec
	if cfg.Auth.AcceptLegacyTokens {
		legacy, err = security.NewLegacyCodec(cfg.Auth.LegacyTokenKey)
		if err != nil {
			return err
		}
		gateOpts = append(gateOpts, service.WithLegacyTokens(legacy))
		log.Warn().Msg("legacy tokens accepted; they carry reversible credentials and never expire")
	}

	// The pool must outlive the HTTP drain; it is closed after Shutdown.
	pool := queue.NewDispatcher(cfg.Pool.Workers, cfg.Pool.QueueDepth, log.With().Str("component", "hash_pool").Logger())
	pool.Start(context.WithoutCancel(ctx))
	defer pool.Close()

	gate, err := service.NewGate(accounts, verifier, pool, signed, log.With().Str("component", "gate").Logger(), gateOpts...)
	if err != nil {
		return err
	}
	authService, err := service.NewAuthService(service.AuthServiceConfig{
		Repo:    accounts,
		Gate:    gate,
		Hasher:  hasher,
		Runner:  pool,
		Signed:  signed,
		Legacy:  legacy,
		Format:  service.TokenFormat(cfg.Auth.TokenFormat),
		Revoked: revocations,
		Logger:  log.With().Str("component", "auth").Logger(),
	})
	if err != nil {
		return err
	}
	lairService := service.NewLairService(lairs, gate, log.With().Str("component", "lairs").Logger())

	e := api.NewRouter(api.Dependencies{
		Logger:      log,
		Realm:       cfg.Auth.Realm,
		Gate:        gate,
		AuthService: authService,
		LairService: lairService,
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		pool.Close()
		return nil
	})

	err = g.Wait()
	logShutdown(err)
	return err
}

// logShutdown reports the final outcome through the process logger.
func logShutdown(err error) {
	log := logger.Get()
	if err != nil {
		log.Error().Err(err).Msg("stopped with error")
		return
	}
	log.Info().Msg("stopped")
}
