package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/application/tracker"
	"github.com/rejoanahmed/starter-template-sub001/internal/config"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	infraauth "github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/auth"
	httprouter "github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/handlers"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/middleware"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/logging"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/db"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/memory"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/postgres"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/queue"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		File:   cfg.Log.File,
	})

	ctx := context.Background()

	var (
		store  ports.Store
		dbPing handlers.Pinger
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		if cfg.Database.SeedFile != "" {
			if err := seedMemory(mem, cfg.Database.SeedFile); err != nil {
				log.Fatal().Err(err).Msg("seed memory store")
			}
		}
		store = mem
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		pool, gdb, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(gdb, log); err != nil {
				log.Fatal().Err(err).Msg("migrate database")
			}
		}
		store = postgres.NewStore(gdb)
		dbPing = pool
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	pemBytes, err := cfg.LoadJWTPublicKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT public key")
	}
	publicKey, err := infraauth.LoadRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT public key")
	}
	verifier := infraauth.NewTokenVerifier(publicKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("create rate limiter store")
	}
	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP, limiterStore)
	if err != nil {
		log.Fatal().Err(err).Msg("parse RATE_LIMIT_PER_IP")
	}
	userLimit, err := middleware.NewUserRateLimiter(cfg.RateLimit.RatePerUser, limiterStore)
	if err != nil {
		log.Fatal().Err(err).Msg("parse RATE_LIMIT_PER_USER")
	}

	opts := []tracker.Option{tracker.WithDefaultPerPage(cfg.Pagination.DefaultPerPage)}
	var worker *queue.Worker
	if cfg.Webhook.URL != "" && redisClient != nil {
		redisOpt := redisClient.Options()
		asynqOpt := asynq.RedisClientOpt{
			Addr:      redisOpt.Addr,
			Username:  redisOpt.Username,
			Password:  redisOpt.Password,
			DB:        redisOpt.DB,
			TLSConfig: redisOpt.TLSConfig,
		}
		publisher := queue.NewPublisher(asynqOpt, log)
		defer publisher.Close()
		opts = append(opts, tracker.WithEventPublisher(publisher))

		emitter := webhook.NewHTTPEmitter(cfg.Webhook.URL, webhook.WithSecret(cfg.Webhook.Secret))
		worker = queue.NewWorker(asynqOpt, cfg.Webhook.Workers, emitter, log.With().Str("component", "webhook").Logger())
		go func() {
			if err := worker.Run(); err != nil {
				log.Warn().Err(err).Msg("webhook worker stopped")
			}
		}()
	} else if cfg.Webhook.URL != "" {
		log.Warn().Msg("WEBHOOK_URL set but redis unavailable; issue events disabled")
	}
	svc := tracker.NewService(store, log.With().Str("component", "tracker").Logger(), opts...)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		IssuesHandler: handlers.NewIssuesHandler(svc, log),
		LabelsHandler: handlers.NewLabelsHandler(svc, log),
		HealthHandler: handlers.NewHealthHandler(dbPing, redisClient),
		Auth:          middleware.NewAuthValidator(verifier, log).Handler,
		Log:           log,
		Secure:        middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		CORS:          middleware.CORS(cfg.CORS.AllowedOrigins),
		IPRateLimit:   ipLimit,
		UserRateLimit: userLimit,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if worker != nil {
		worker.Shutdown()
	}
	log.Info().Msg("server stopped")
}

func seedMemory(store *memory.Store, path string) error {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}
	for _, org := range seed.Organizations {
		store.AddOrganization(domain.Organization{ID: org.ID, Name: org.Name, CreatedAt: time.Now().UTC()})
		for _, team := range org.Teams {
			if err := store.AddTeam(domain.Team{ID: team.ID, OrganizationID: org.ID, Name: team.Name}); err != nil {
				return err
			}
		}
		for _, m := range org.Members {
			if err := store.AddMember(domain.Membership{OrganizationID: org.ID, UserID: m.UserID, Role: m.Role}); err != nil {
				return err
			}
		}
	}
	return nil
}
