package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/audit"
	auditpostgres "github.com/gatehouse/visitor-management/internal/audit/postgres"
	"github.com/gatehouse/visitor-management/internal/auth"
	authpostgres "github.com/gatehouse/visitor-management/internal/auth/postgres"
	"github.com/gatehouse/visitor-management/internal/core/events"
	"github.com/gatehouse/visitor-management/internal/dashboard"
	"github.com/gatehouse/visitor-management/internal/notification"
	notificationpostgres "github.com/gatehouse/visitor-management/internal/notification/postgres"
	"github.com/gatehouse/visitor-management/internal/transport"
	"github.com/gatehouse/visitor-management/internal/transport/rest"
	"github.com/gatehouse/visitor-management/internal/user"
	userpostgres "github.com/gatehouse/visitor-management/internal/user/postgres"
	"github.com/gatehouse/visitor-management/internal/visitor"
	visitorpostgres "github.com/gatehouse/visitor-management/internal/visitor/postgres"
	"github.com/gatehouse/visitor-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	SQL    *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Router http.Handler
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SQL.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment, config.Logging.Level)
	lg := logger.LoggerWrapper()
	transport.SetExposeStack(!config.IsProduction())

	sqlDB, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			lg.Warn("redis unavailable, rate limiting disabled", "error", err)
			redisClient = nil
		}
	}

	router := buildRouter(config, sqlDB, gormDB, redisClient, lg)

	return &Dependencies{
		Config: config,
		SQL:    sqlDB,
		Gorm:   gormDB,
		Redis:  redisClient,
		Router: router,
		Logger: lg,
	}, nil
}

// buildRouter wires repositories, services, the event bus and its
// subscribers, then assembles the route table.
func buildRouter(config *internal.Config, sqlDB *sqlx.DB, gormDB *gorm.DB, redisClient *redis.Client, lg *slog.Logger) http.Handler {
	bus := events.NewEventBus(lg)

	accountRepo := authpostgres.NewAccountRepository(gormDB)
	userRepo := userpostgres.NewUserRepository(gormDB)
	visitorRepo := visitorpostgres.NewVisitorRepository(gormDB)
	auditRepo := auditpostgres.NewAuditRepository(gormDB)
	notificationRepo := notificationpostgres.NewNotificationRepository(gormDB)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(accountRepo, tokens, lg).WithBCryptCost(config.Security.BCryptCost)
	userService := user.NewService(userRepo, lg)
	visitorService := visitor.NewService(visitorRepo, bus, lg)
	auditService := audit.NewService(auditRepo, lg)
	notificationService := notification.NewService(notificationRepo, lg)
	dashboardService := dashboard.NewService(visitorRepo, lg)

	// Side-effect subscribers: the audit trail and host notifications.
	auditService.Subscribe(bus)
	notificationService.Subscribe(bus)

	base := transport.NewBaseHandler(lg)

	return rest.NewRouter(rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(base, userService),
		Visitor:      visitor.NewHandler(base, visitorService),
		Audit:        audit.NewHandler(base, auditService),
		Notification: notification.NewHandler(base, notificationService),
		Dashboard:    dashboard.NewHandler(base, dashboardService),
	}, rest.Options{
		AllowedOrigins:   config.Server.AllowedOrigins,
		DB:               sqlDB,
		RedisClient:      redisClient,
		Logger:           lg,
		EnableSwagger:    config.Swagger.Enabled,
		AuthRateRequests: config.RateLimit.AuthRequests,
		AuthRateWindow:   config.RateLimit.AuthWindow,
	})
}

// initDB opens one pgx connection pool and hands it to both sqlx (pings,
// raw statements) and gorm (repositories).
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	sqlDB, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: sqlDB.DB,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return sqlDB, gormDB, nil
}
