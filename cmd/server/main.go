package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/api"
	"github.com/userhub/identity-api/internal/core/ports"
	"github.com/userhub/identity-api/internal/core/service"
	"github.com/userhub/identity-api/internal/infrastructure/config"
	"github.com/userhub/identity-api/internal/infrastructure/countries"
	mongostore "github.com/userhub/identity-api/internal/infrastructure/db/mongo"
	"github.com/userhub/identity-api/internal/infrastructure/db/postgres"
	redisstore "github.com/userhub/identity-api/internal/infrastructure/db/redis"
	"github.com/userhub/identity-api/internal/infrastructure/http/handlers"
	"github.com/userhub/identity-api/internal/infrastructure/messaging"
	"github.com/userhub/identity-api/internal/infrastructure/queue"
	"github.com/userhub/identity-api/internal/infrastructure/security"
	"github.com/userhub/identity-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Identity API
// @version                     1.0
// @description                 User registration, login and account lifecycle.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

// closers are released in reverse order on shutdown.
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var cleanup closers
	defer cleanup.closeAll()

	// --- Credential store ---
	store, storePinger, err := openStore(ctx, cfg, &cleanup)
	if err != nil {
		return err
	}
	pingers := []handlers.Pinger{storePinger}

	// --- Login throttle (optional) ---
	var limiter ports.LoginLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		cleanup.add(func() { _ = rdb.Close() })
		limiter = redisstore.NewLoginLimiter(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginWindow)
		pingers = append(pingers, redisstore.Pinger{Client: rdb})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	// --- Lifecycle events ---
	publisher := newPublisher(cfg, logger.Component("events"))
	cleanup.add(func() { _ = publisher.Close() })

	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, publisher, logger.Component("dispatcher"))
	dispatcher.Start()
	cleanup.add(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Stop(stopCtx); err != nil {
			log.Warn().Err(err).Msg("event dispatcher did not drain")
		}
	})

	// --- Services ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec, err := security.NewJWTCodec(cfg.Auth.JWTSecret, security.WithLeeway(cfg.Auth.TokenLeeway))
	if err != nil {
		return err
	}
	catalog := countries.NewCatalog()

	authService := service.NewAuthService(store, hasher, codec, cfg.Auth.TokenTTL, logger.Component("auth"))
	userService := service.NewUserService(store, catalog, hasher, dispatcher, logger.Component("users"))

	if err := bootstrapAdmin(ctx, cfg.Bootstrap, userService, log); err != nil {
		return err
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:    authService,
		Users:   userService,
		Codec:   codec,
		Limiter: limiter,
		Pingers: pingers,
		Log:     logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, cleanup *closers) (ports.CredentialStore, handlers.Pinger, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return nil, nil, err
		}
		db, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		cleanup.add(db.Close)
		return postgres.NewIdentityRepo(db), db, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		cleanup.add(func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		repo := mongostore.NewIdentityRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return repo, mongostore.Pinger{Client: client}, nil
	}
}

type eventPublisher interface {
	ports.EventPublisher
	io.Closer
}

func newPublisher(cfg *config.Config, log zerolog.Logger) eventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("KAFKA_BROKERS not set, lifecycle events go to the log")
		return messaging.NewLogPublisher(log)
	}
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing lifecycle events to kafka")
	return messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}

func bootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig, users *service.UserService, log zerolog.Logger) error {
	if cfg.Username == "" {
		return nil
	}
	created, err := users.EnsureAdmin(ctx, ports.RegisterInput{
		Username:    cfg.Username,
		Password:    cfg.Password,
		FirstName:   cfg.Username,
		LastName:    "Administrator",
		Email:       cfg.Email,
		Birthdate:   "1970-01-01",
		CountryName: cfg.Country,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info().Str("username", cfg.Username).Msg("bootstrap admin created")
	}
	return nil
}
