package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/config"
	"github.com/libtrary/libtrary/internal/database"
	"github.com/libtrary/libtrary/internal/database/books"
	rentalstore "github.com/libtrary/libtrary/internal/database/rentals"
	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/database/wishlists"
	http_controllers "github.com/libtrary/libtrary/internal/http"
	"github.com/libtrary/libtrary/internal/mailer"
	"github.com/libtrary/libtrary/internal/rentals"
	"github.com/libtrary/libtrary/internal/scheduler"
	"github.com/libtrary/libtrary/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before closing the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libtrary v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	rentalRepo := rentalstore.NewRepository(db.DB)
	wishlistRepo := wishlists.NewRepository(db.DB)

	smtpMailer := mailer.NewSMTPMailer(cfg.Mail)

	// Notification task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var notifier http_controllers.Notifier
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewSendEmailQueue(smtpMailer))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		notifier = tasks.NewEmailEnqueuer(taskClient)
	} else {
		log.Printf("Task queue disabled; emails are delivered synchronously")
		notifier = directNotifier{mailer: smtpMailer}
	}

	authTokens := auth.NewTokens(cfg.Auth)
	authService := auth.NewService(userRepo, authTokens, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService)

	rentalService := rentals.NewService(userRepo, bookRepo, rentalRepo, wishlistRepo, notifier, cfg.Rental.DueDays)

	// Optional overdue reminder job
	var overdueScheduler *scheduler.OverdueNoticeScheduler
	if cfg.OverdueNotice.Enabled {
		overdueScheduler = scheduler.NewOverdueNoticeScheduler(rentalRepo, notifier, cfg.OverdueNotice.Schedule, cfg.Rental.DueDays)
		if err := overdueScheduler.Start(); err != nil {
			log.Fatalf("Failed to start overdue notice scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		RentalService:  rentalService,
		BookRepo:       bookRepo,
		WishlistRepo:   wishlistRepo,
		Notifier:       notifier,
		HTTPConfig:     cfg.HTTP,
		MailConfig:     cfg.Mail,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if overdueScheduler != nil {
			overdueScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// directNotifier delivers synchronously when the task queue is disabled.
type directNotifier struct {
	mailer mailer.Mailer
}

func (d directNotifier) Notify(subject, body, to string) error {
	return d.mailer.Send(subject, body, to)
}
