package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/eleave-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/gscript"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/eleave-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/eleave-backend-go/internal/service/auth"
	serviceDocument "github.com/cmlabs-hris/eleave-backend-go/internal/service/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/service/file"
	"github.com/cmlabs-hris/eleave-backend-go/internal/service/leave"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/oauth2/clientcredentials"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "eleave-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	location, err := cfg.Leave.Location()
	if err != nil {
		return err
	}

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	outboxRepo := postgresql.NewOutboxRepository(db)
	transactor := postgresql.NewTransactor(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("initialize local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	webhookClient := gscript.NewClient(gscript.Config{
		URL:           cfg.Webhook.URL,
		Timeout:       cfg.Webhook.Timeout,
		RatePerSecond: cfg.Webhook.RatePerSecond,
		Burst:         cfg.Webhook.Burst,
		SigningSecret: cfg.Webhook.SigningSecret,
		OAuth: clientcredentials.Config{
			ClientID:     cfg.Webhook.OAuthClientID,
			ClientSecret: cfg.Webhook.OAuthClientSecret,
			TokenURL:     cfg.Webhook.OAuthTokenURL,
			Scopes:       cfg.Webhook.OAuthScopes,
		},
	})
	dispatcher := serviceDocument.NewDispatcher(outboxRepo, leaveRequestRepo, webhookClient, serviceDocument.Config{
		BatchSize:   cfg.Webhook.BatchSize,
		MaxAttempts: cfg.Webhook.MaxAttempts,
	})

	opts := leave.Options{Location: location}
	calculator := leave.NewWorkingDaysCalculator(holidayRepo)
	requestService := leave.NewRequestService(transactor, leaveRequestRepo, employeeRepo, outboxRepo, calculator, fileService, dispatcher, opts)
	balanceService := leave.NewBalanceService(employeeRepo, opts)
	maintenanceService := leave.NewMaintenanceService(transactor, employeeRepo, leaveRequestRepo, opts)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authService := serviceAuth.NewAuthService(userRepo, JWTService)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		UploadsDir:     fileStorage.Root(),
	}, JWTService, appHTTP.Handlers{
		Auth:    appHTTP.NewAuthHandler(authService),
		Leave:   appHTTP.NewLeaveHandler(requestService),
		Balance: appHTTP.NewBalanceHandler(balanceService),
		Holiday: appHTTP.NewHolidayHandler(calculator),
		Admin:   appHTTP.NewAdminHandler(maintenanceService),
	})

	scheduler := cron.NewScheduler()
	if cfg.Webhook.Enabled() {
		scheduler.AddTriggeredJob("document-dispatch", cfg.Webhook.PollInterval, dispatcher.Wake(), func(ctx context.Context) error {
			_, err := dispatcher.DispatchPending(ctx)
			return err
		})
	} else {
		slog.Warn("GSCRIPT_WEBHOOK_URL not set, approved leave documents will stay queued")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
