// Package bootstrap wires configuration, stores and HTTP handlers together.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/Anandhu5Uthaman/College-mini/internal/app/controllers"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	appRepos "github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories/mongodb"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories/postgres"
	appRoutes "github.com/Anandhu5Uthaman/College-mini/internal/app/routes"
	appServices "github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/config"
	"github.com/Anandhu5Uthaman/College-mini/internal/db"
	appMiddleware "github.com/Anandhu5Uthaman/College-mini/internal/middleware"
	pkgAuth "github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/cache"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/email"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/filestorage"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/websocket"
	"github.com/Anandhu5Uthaman/College-mini/internal/seed"
)

const (
	profileCachePrefix = "profile"
	welcomeQueueSize   = 100
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store        *appRepos.Store
	Redis        *redis.Client
	Publisher    events.Publisher
	Hub          *websocket.Hub
	FileStorage  filestorage.FileStorage
	LocalStorage *filestorage.LocalStorage // nil unless the local driver is used

	JWTService  *pkgAuth.JWTService
	AuthService *appServices.AuthService
	UserService *appServices.UserService
	BlogService *appServices.BlogService

	// NotificationService also receives every published event.
	NotificationService *appServices.NotificationService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Limiters       appRoutes.Limiters
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger reads .env when present, loads configuration and
// initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("No .env file loaded")
	}

	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore connects to the database named by DATABASE_URI and prepares its
// schema: goose migrations for PostgreSQL, indexes for MongoDB.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Store, error) {
	if cfg.IsMongoURI() {
		return setupMongoStore(ctx, cfg, lgr)
	}
	return setupPostgresStore(ctx, cfg, lgr)
}

func setupPostgresStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Store, error) {
	lgr.Info().Msg("Establishing PostgreSQL connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	if err := db.RunMigrations(ctx, database.SQL); err != nil {
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return &appRepos.Store{
		Users:         postgres.NewUserRepository(database.SQL),
		Blogs:         postgres.NewBlogRepository(database.SQL),
		Comments:      postgres.NewCommentRepository(database.SQL),
		Notifications: postgres.NewNotificationRepository(database.SQL),
		Close: func(context.Context) error {
			database.Close()
			return nil
		},
	}, nil
}

func setupMongoStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Store, error) {
	lgr.Info().Str("database", cfg.Database.Name).Msg("Establishing MongoDB connection...")
	database, err := db.NewMongoDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	users := mongodb.NewUserRepository(database.Database)
	blogs := mongodb.NewBlogRepository(database.Database)
	comments := mongodb.NewCommentRepository(database.Database)
	notifications := mongodb.NewNotificationRepository(database.Database)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, ensure := range []func(context.Context) error{
		users.EnsureIndexes, blogs.EnsureIndexes, comments.EnsureIndexes, notifications.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			_ = database.Close(ctx)
			return nil, err
		}
	}
	lgr.Info().Msg("MongoDB indexes ensured.")

	return &appRepos.Store{
		Users:         users,
		Blogs:         blogs,
		Comments:      comments,
		Notifications: notifications,
		Close:         database.Close,
	}, nil
}

// BuildDependencies initializes caches, storage, services and controllers on
// top of store.
func BuildDependencies(ctx context.Context, cfg *config.Config, store *appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}
	queryTimeout := helpers.ParseDuration(cfg.Database.QueryTimeout, appServices.DefaultQueryTimeout)

	profiles, err := deps.setupProfileCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var broker events.Publisher = events.Nop{}
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		broker = events.NewKafkaPublisher(brokers, cfg.Kafka.Topic, logger.Component("events"))
		lgr.Info().Strs("brokers", brokers).Str("topic", cfg.Kafka.Topic).Msg("Event publishing enabled")
	}
	deps.NotificationService = appServices.NewNotificationService(store.Notifications, queryTimeout,
		logger.Component("notifications"))
	deps.Hub = websocket.NewHub(logger.Component("notifications"), events.CommentCreated, events.BlogLiked)
	go deps.Hub.Run()
	publishers := events.Multi{deps.NotificationService, broker, deps.Hub}
	if cfg.SMTP.Host != "" {
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
			UseTLS:    cfg.SMTP.UseTLS,
		}, logger.Component("email"))
		publishers = append(publishers, email.NewWelcomeMailer(sender, welcomeQueueSize, logger.Component("email")))
		lgr.Info().Str("host", cfg.SMTP.Host).Msg("Welcome emails enabled")
	}
	deps.Publisher = publishers

	if err := deps.setupFileStorage(ctx, cfg); err != nil {
		deps.closeClients()
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	hasher := pkgAuth.NewBcryptHasher(cfg.Password.BcryptCost)
	rules := validation.NewRules(cfg.Institution.EmailDomain)

	deps.AuthService = appServices.NewAuthService(store.Users, hasher, deps.JWTService, rules, deps.Publisher,
		queryTimeout, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(store.Users, hasher, rules, profiles, deps.FileStorage, deps.Publisher,
		queryTimeout, cfg.Storage.MaxImageSize, logger.Component("users"))
	deps.BlogService = appServices.NewBlogService(store.Blogs, store.Comments, store.Users, deps.Publisher,
		queryTimeout, logger.Component("blogs"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Limiters = appRoutes.Limiters{
		General:  newLimiter("general", cfg.RateLimit.General),
		Auth:     newLimiter("auth", cfg.RateLimit.Auth),
		Content:  newLimiter("content", cfg.RateLimit.Content),
		Comments: newLimiter("comments", cfg.RateLimit.Comments),
	}

	notifications := websocket.NewHandler(deps.Hub, logger.Component("notifications"))
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService, lgr),
		Blog:         appControllers.NewBlogController(deps.BlogService),
		Notification: appControllers.NewNotificationController(deps.NotificationService, notifications, lgr),
	}

	if cfg.Seed.Demo {
		if err := seed.CreateDemoData(ctx, store.Users, deps.AuthService, deps.BlogService,
			cfg.Institution.EmailDomain, logger.Component("seed")); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo data")
		}
	}

	return deps, nil
}

func (d *Dependencies) setupProfileCache(ctx context.Context, cfg *config.Config) (cache.Store[dto.UserProfile], error) {
	if cfg.Redis.Addr == "" {
		d.Logger.Info().Msg("Redis not configured, profile cache disabled")
		return cache.Nop[dto.UserProfile]{}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	d.Redis = client
	ttl := helpers.ParseDuration(cfg.Redis.ProfileTTL, 5*time.Minute)
	d.Logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("Profile cache enabled")
	return cache.NewRedisStore[dto.UserProfile](client, profileCachePrefix, ttl), nil
}

func (d *Dependencies) setupFileStorage(ctx context.Context, cfg *config.Config) error {
	var backend filestorage.FileStorage
	switch strings.ToLower(cfg.Storage.Driver) {
	case "s3":
		publicURL := cfg.Storage.PublicURL
		if !strings.HasPrefix(publicURL, "http") {
			publicURL = ""
		}
		s3, err := filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			PublicURL: publicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		backend = s3
	default:
		local, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.PublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize file storage: %w", err)
		}
		d.LocalStorage = local
		backend = local
	}

	timeout := helpers.ParseDuration(cfg.Storage.Timeout, 15*time.Second)
	d.FileStorage = filestorage.NewBreakerStorage("storage-"+strings.ToLower(cfg.Storage.Driver), backend, timeout)
	d.Logger.Info().Str("driver", cfg.Storage.Driver).Msg("File storage configured")
	return nil
}

func newLimiter(name string, rule config.RateLimitRule) *appMiddleware.RateLimiter {
	return appMiddleware.NewRateLimiter(name, appMiddleware.RateLimitRule{
		Requests: rule.Requests,
		Window:   helpers.ParseDuration(rule.Window, 15*time.Minute),
	})
}

func (d *Dependencies) closeClients() error {
	var errs []error
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close stops the rate limiters and releases the publisher, cache and store.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Limiters.Close()
	errs := []error{d.closeClients()}
	if d.Store != nil && d.Store.Close != nil {
		if err := d.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		deps.Logger.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		deps.Logger.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(deps.Logger),
	)
	router.MaxMultipartMemory = cfg.Storage.MaxImageSize + 1<<20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Limiters)

	if deps.LocalStorage != nil && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		router.Static(cfg.Storage.PublicURL, deps.LocalStorage.BasePath())
		deps.Logger.Info().Str("path", deps.LocalStorage.BasePath()).Msg("Static file serving configured for uploads directory")
	}

	return router
}
