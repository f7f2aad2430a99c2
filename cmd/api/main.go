package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agencyos/enrich-api/internal/config"
	"github.com/agencyos/enrich-api/internal/entity"
	"github.com/agencyos/enrich-api/internal/infra/cache"
	"github.com/agencyos/enrich-api/internal/infra/database"
	"github.com/agencyos/enrich-api/internal/infra/http/handlers"
	"github.com/agencyos/enrich-api/internal/infra/http/middleware"
	"github.com/agencyos/enrich-api/internal/infra/integration/breaker"
	"github.com/agencyos/enrich-api/internal/infra/integration/directus"
	"github.com/agencyos/enrich-api/internal/infra/integration/mockdata"
	"github.com/agencyos/enrich-api/internal/infra/integration/peopledata"
	"github.com/agencyos/enrich-api/internal/infra/mail"
	"github.com/agencyos/enrich-api/internal/infra/queue"
	"github.com/agencyos/enrich-api/internal/infra/worker"
	"github.com/agencyos/enrich-api/internal/logging"
	"github.com/agencyos/enrich-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger("info").Fatal("Failed to load config", zap.Error(err))
	}

	logger := logging.NewLogger(cfg.Logging.Level)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []handlers.HealthCheck

	// 1. Provider
	provider, providerBreaker := buildProvider(cfg, logger)
	if providerBreaker != nil {
		checks = append(checks, handlers.HealthCheck{
			Name: "provider_breaker",
			Check: func(context.Context) error {
				if providerBreaker.State() == breaker.StateOpen {
					return breaker.ErrCircuitOpen
				}
				return nil
			},
		})
	}

	// 2. Optional infrastructure; disabled components stay nil interfaces.
	var profileCache usecase.ProfileCache
	if cfg.Redis.Enabled() {
		pc, client, err := cache.NewProfileCache(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Enrichment.CacheTTL, logger)
		if err != nil {
			logger.Warn("Profile cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			profileCache = pc
			checks = append(checks, handlers.HealthCheck{
				Name:  "redis",
				Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			})
		}
	}

	var sweepers []*worker.Sweeper
	var contacts entity.EnrichedContactRepositoryInterface
	if cfg.Database.Enabled() {
		db, err := database.NewDBConnection(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewEnrichedContactRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		contacts = repo
		checks = append(checks, handlers.HealthCheck{Name: "database", Check: db.PingContext})
		logger.Info("Database connected")

		if retention := cfg.Database.ContactRetention; retention > 0 {
			sweepers = append(sweepers, worker.NewSweeper("enriched_contacts", time.Hour,
				func(ctx context.Context) (int64, error) {
					return repo.PruneStale(ctx, time.Now().Add(-retention))
				}, logger))
		}
	}

	var producer usecase.QueueProducerInterface
	var consumer *queue.Worker
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		producer = queue.NewProducer(rabbitMQ.Ch)
		checks = append(checks, handlers.HealthCheck{
			Name: "rabbitmq",
			Check: func(context.Context) error {
				if !rabbitMQ.Healthy() {
					return errors.New("connection closed")
				}
				return nil
			},
		})

		if cfg.Directus.Enabled() {
			var notifier queue.LeadNotifier
			if cfg.Mail.Enabled() {
				notifier = mail.NewEmailSender(
					cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
					cfg.Mail.From, cfg.Mail.NotifyTo,
				)
			}
			// The consumer gets its own channel so publishes never share it.
			consumeCh, err := rabbitMQ.Conn.Channel()
			if err != nil {
				return err
			}
			defer consumeCh.Close()

			syncer := directus.NewClient(cfg.Directus.URL, cfg.Directus.Token, logger)
			consumer = queue.NewWorker(consumeCh, syncer, notifier, cfg.RabbitMQ.WorkerConcurrency, logger)
		}
	}

	// 3. UseCase and handlers
	enrichUC := usecase.NewEnrichContactUseCase(
		provider, profileCache, contacts, producer,
		usecase.EnrichOptions{
			ProviderTimeout: cfg.Enrichment.ProviderTimeout,
			StrictEmail:     cfg.Enrichment.StrictEmail,
		},
		logger,
	)

	limiter := handlers.NewRateLimiter(cfg.Enrichment.RateLimit, cfg.Enrichment.RateWindow)
	sweepers = append(sweepers, worker.NewSweeper("rate_limiter", cfg.Enrichment.RateWindow,
		func(context.Context) (int64, error) {
			return int64(limiter.Cleanup()), nil
		}, logger))
	enrichHandler := handlers.NewEnrichHandler(enrichUC, provider.Name(), limiter, logger)
	healthHandler := handlers.NewHealthHandler(cfg.Server.Version, checks...)

	// 4. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/enrich/contact", enrichHandler.HandleContact)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Enrichment.ProviderTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", provider.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	for _, s := range sweepers {
		g.Go(func() error {
			s.Start(gctx)
			return nil
		})
	}

	if consumer != nil {
		g.Go(func() error {
			return consumer.Start(gctx, queue.QueueName)
		})
	}

	return g.Wait()
}

func buildProvider(cfg *config.Config, logger *zap.Logger) (entity.Provider, *breaker.CircuitBreaker) {
	switch cfg.Enrichment.Provider {
	case config.ProviderPeopleData:
		client := peopledata.NewClient(cfg.PeopleData.APIKey, cfg.PeopleData.BaseURL, cfg.Enrichment.ProviderTimeout, logger)
		cb := breaker.NewCircuitBreaker(cfg.Enrichment.BreakerThreshold, cfg.Enrichment.BreakerReset, logger)
		return breaker.NewProvider(client, cb), cb
	default:
		return mockdata.NewProvider(cfg.Enrichment.MockDelay), nil
	}
}
