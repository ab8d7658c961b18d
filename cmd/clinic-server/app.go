package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dental/clinic/internal/config"
	"github.com/dental/clinic/internal/domain/dashboard"
	"github.com/dental/clinic/internal/domain/ehr"
	"github.com/dental/clinic/internal/domain/identity"
	"github.com/dental/clinic/internal/domain/scheduling"
	"github.com/dental/clinic/internal/domain/supply"
	"github.com/dental/clinic/internal/platform/auth"
	"github.com/dental/clinic/internal/platform/db"
	"github.com/dental/clinic/internal/platform/imagestore"
	"github.com/dental/clinic/internal/platform/metrics"
	"github.com/dental/clinic/internal/platform/middleware"
	"github.com/dental/clinic/internal/platform/notice"
	"github.com/dental/clinic/internal/platform/reminder"
)

const (
	apiPrefix    = "/api/v1"
	uploadPrefix = apiPrefix + "/xray-images"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// repositories holds one implementation per aggregate, chosen by STORAGE.
type repositories struct {
	patients     identity.PatientRepository
	doctors      identity.DoctorRepository
	nurses       identity.NurseRepository
	appointments scheduling.AppointmentRepository
	records      ehr.Repository
	supplies     supply.Repository
}

func memoryRepositories() *repositories {
	return &repositories{
		patients:     identity.NewPatientRepoMemory(),
		doctors:      identity.NewDoctorRepoMemory(),
		nurses:       identity.NewNurseRepoMemory(),
		appointments: scheduling.NewAppointmentRepoMemory(),
		records:      ehr.NewRepoMemory(),
		supplies:     supply.NewRepoMemory(),
	}
}

func pgRepositories(pool *pgxpool.Pool) *repositories {
	return &repositories{
		patients:     identity.NewPatientRepoPG(pool),
		doctors:      identity.NewDoctorRepoPG(pool),
		nurses:       identity.NewNurseRepoPG(pool),
		appointments: scheduling.NewAppointmentRepoPG(pool),
		records:      ehr.NewRepoPG(pool),
		supplies:     supply.NewRepoPG(pool),
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, db.PoolOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		Schema:   cfg.DBSchema,
	})
}

// openRepositories returns the configured repositories and, for postgres,
// the pool backing them. The caller closes the pool.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, *pgxpool.Pool, error) {
	if !cfg.UsesPostgres() {
		return memoryRepositories(), nil, nil
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return pgRepositories(pool), pool, nil
}

type services struct {
	identity   *identity.Service
	scheduling *scheduling.Service
	ehr        *ehr.Service
	supply     *supply.Service
	dashboard  *dashboard.Service
}

func newServices(cfg *config.Config, repos *repositories, m *metrics.Collectors, loc *time.Location) *services {
	now := func() time.Time { return time.Now().In(loc) }

	people := identity.NewService(repos.patients, repos.doctors, repos.nurses).WithClock(now)
	appts := scheduling.NewService(repos.appointments, people, cfg.ConflictWindowMinutes).
		WithClock(now).
		WithMetrics(m)
	records := ehr.NewService(repos.records, ehr.NewSessionStore(0, now)).WithClock(now)
	stock := supply.NewService(repos.supplies, cfg.LowStockThreshold).
		WithClock(now).
		WithMetrics(m)

	return &services{
		identity:   people,
		scheduling: appts,
		ehr:        records,
		supply:     stock,
		dashboard:  dashboard.NewService(people, appts, stock, records).WithClock(now),
	}
}

func newImageStore(cfg *config.Config) (imagestore.Store, error) {
	if cfg.ImageStore == "cloudinary" {
		store, err := imagestore.NewCloudinaryStore(cfg.CloudinaryURL, "xrays")
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := imagestore.NewLocalStore(cfg.ImageDir, uploadPrefix)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newNoticeStore uses redis when REDIS_URL is set so every instance shows
// the same banners. The returned client is nil for the memory store.
func newNoticeStore(ctx context.Context, cfg *config.Config) (notice.Store, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return notice.NewMemoryStore(), nil, nil
	}
	client, err := notice.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return notice.NewRedisStore(client), client, nil
}

func newNotifier(cfg *config.Config, logger zerolog.Logger) reminder.Notifier {
	if cfg.SMTPHost == "" {
		return reminder.NewLogNotifier(logger)
	}
	return reminder.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
}

func newReminderJob(cfg *config.Config, svcs *services, logger zerolog.Logger, m *metrics.Collectors, loc *time.Location) *reminder.Job {
	logger = logger.With().Str("component", "reminder").Logger()
	return reminder.NewJob(svcs.scheduling, svcs.identity, newNotifier(cfg, logger), cfg.ReminderLead).
		WithDoctors(svcs.identity).
		WithLocation(loc).
		WithMetrics(m).
		WithLogger(logger)
}

// newServer assembles the echo instance. pool may be nil for memory storage.
func newServer(cfg *config.Config, logger zerolog.Logger, svcs *services, images imagestore.Store,
	pub *notice.Publisher, m *metrics.Collectors, pool *pgxpool.Pool) *echo.Echo {

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M", "20M", uploadPrefix))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, uploadPrefix))
	e.Use(middleware.Metrics(m))
	e.Use(auth.Middleware(auth.Config{
		SigningKey: []byte(cfg.AuthSigningKey),
		Issuer:     cfg.AuthIssuer,
		DevMode:    cfg.IsDev(),
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	e.Use(notice.Banners(pub))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"storage": cfg.Storage,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group(apiPrefix)
	scheduling.NewHandler(svcs.scheduling).RegisterRoutes(api)
	identity.NewHandler(svcs.identity).RegisterRoutes(api)
	ehr.NewHandler(svcs.ehr).RegisterRoutes(api)
	supply.NewHandler(svcs.supply).RegisterRoutes(api)
	dashboard.NewHandler(svcs.dashboard).RegisterRoutes(api)
	imagestore.NewHandler(images).RegisterRoutes(api)
	notice.NewHandler(pub).RegisterRoutes(api)

	return e
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
