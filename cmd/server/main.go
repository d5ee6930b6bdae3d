package main

import (
	"alcyxob/gym-manager/internal/api"
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/content"
	"alcyxob/gym-manager/internal/jobs"
	"alcyxob/gym-manager/internal/logging"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/notify"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/repository/memory"
	mongorepo "alcyxob/gym-manager/internal/repository/mongo"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const serviceName = "gym-manager"

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	logging.Init(serviceName, cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("env", cfg.App.Env).Str("timezone", cfg.App.Timezone).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := service.NewClock(cfg.App.Location(), nil)
	healthChecks := map[string]api.Pinger{}

	// --- Repositories ---
	var repos repository.Repositories
	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		repos = memory.NewRepositories()
	default:
		dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to MongoDB")
		}
		defer func() {
			log.Info().Msg("disconnecting MongoDB")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				log.Error().Err(err).Msg("failed to disconnect MongoDB")
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		// Unique and partial indexes back the one-active-reservation,
		// one-open-visit and one-active-routine rules, so they must exist
		// before traffic is served.
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err = mongorepo.EnsureIndexes(indexCtx, appDB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("could not ensure indexes")
		}
		repos = mongorepo.NewRepositories(appDB)
		healthChecks["mongo"] = mongorepo.Pinger{Client: dbClient}.Ping
		log.Info().Str("database", cfg.Database.Name).Msg("database connection established")
	}

	// --- Sessions ---
	var store session.Store
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient, config.NewCircuitBreaker("Redis-Sessions"))
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		log.Info().Str("address", cfg.Redis.Address).Msg("sessions stored in Redis")
	} else {
		log.Warn().Msg("redis.address is empty, sessions are kept in memory")
		store = session.NewMemoryStore()
	}
	sessions := api.NewSessions(
		session.NewManager(store, cfg.Session.Secret, cfg.Session.TTL),
		cfg.Session.CookieName,
		cfg.Session.Secure,
	)

	// --- File storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3 storage")
		}
	} else {
		log.Warn().Msg("s3 is not configured, class image uploads are disabled")
	}

	// --- Email ---
	var sender notify.Sender = notify.LogSender{}
	if cfg.Email.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	}
	notifier := notify.NewMailNotifier(sender, cfg.App.Name)

	// --- Services ---
	services := api.Services{
		Auth:       service.NewAuthService(repos.Administrators, repos.Members),
		Member:     service.NewMemberService(repos.Members, repos.Plans, notifier, clock),
		Plan:       service.NewPlanService(repos.Plans),
		Instructor: service.NewInstructorService(repos.Instructors, clock),
		Class:      service.NewClassService(repos, fileStorage),
		Attendance: service.NewAttendanceService(repos.Attendances, repos.Members, clock),
		Routine:    service.NewRoutineService(repos, clock),
		Progress:   service.NewProgressService(repos, clock),
		Dashboard:  service.NewDashboardService(repos, clock),
	}
	bootstrap(ctx, cfg.Bootstrap, services)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// --- Background jobs ---
	runner := jobs.NewRunner(
		jobs.ExpirationSweep(services.Member, cfg.Jobs.ExpirationSweepInterval),
		jobs.ExpiryReminders(services.Member, cfg.Jobs.ReminderInterval, cfg.Jobs.ReminderWindowDays),
	)
	runner.Start(ctx)

	// --- HTTP ---
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	var csrfKey []byte
	if cfg.Server.CSRFKey != "" {
		csrfKey = []byte(cfg.Server.CSRFKey)
	}
	api.SetupRoutes(router, api.RouterConfig{
		Services:       services,
		Sessions:       sessions,
		Pages:          content.NewPages(),
		Clock:          clock,
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.Session.Secure,
		TrustedOrigins: cfg.Server.TrustedOrigins,
		HealthChecks:   healthChecks,
		Metrics:        metrics.Handler(registry),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	runner.Wait()

	log.Info().Msg("server exiting")
}

// bootstrap creates the first administrator and the default plans when
// the database is empty.
func bootstrap(ctx context.Context, cfg config.BootstrapConfig, services api.Services) {
	if _, err := services.Auth.EnsureAdmin(ctx, service.AdminInput{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to create bootstrap administrator")
	}

	if !cfg.SeedPlans {
		return
	}
	n, err := services.Plan.SeedDefaults(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed default plans")
	}
	if n > 0 {
		log.Info().Int("plans", n).Msg("default plans created")
	}
}
