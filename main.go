package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pms/internal/config"
	api "pms/internal/http"
	"pms/internal/http/handlers"
	"pms/internal/http/middleware"
	"pms/internal/openai"
	"pms/internal/repositories"
	"pms/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.OpenDB(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	userRepo := repositories.UserRepository{DB: db}
	projectRepo := repositories.ProjectRepository{DB: db}
	taskRepo := repositories.TaskRepository{DB: db}
	eventRepo := repositories.EventRepository{DB: db}
	chatRepo := repositories.ChatRepository{DB: db}
	fileRepo := repositories.FileRepository{DB: db}

	authSvc := services.AuthService{
		Users:     userRepo,
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
		Log:       logger,
	}
	projectSvc := services.ProjectService{Projects: projectRepo, Log: logger}
	reportSvc := services.ReportService{
		Projects: projectRepo,
		Tasks:    taskRepo,
		Project:  projectSvc,
		Log:      logger,
	}

	hs := api.Handlers{
		System: handlers.SystemHandler{DB: db},
		Auth:   handlers.AuthHandler{Auth: authSvc},
		Users: handlers.UserHandler{
			Users: services.UserService{Users: userRepo, Log: logger},
		},
		Projects: handlers.ProjectHandler{Projects: projectSvc},
		Tasks: handlers.TaskHandler{
			Tasks: services.TaskService{Tasks: taskRepo, Projects: projectRepo, Log: logger},
		},
		Calendar: handlers.CalendarHandler{
			Calendar: services.CalendarService{Events: eventRepo, Log: logger},
		},
		Chat: handlers.ChatHandler{
			Chat: services.ChatService{
				Chats:        chatRepo,
				Completer:    openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIKey),
				DefaultModel: cfg.OpenAIModel,
				Log:          logger,
			},
		},
		Dashboard: handlers.DashboardHandler{
			Dashboard: services.DashboardService{
				Projects: projectRepo,
				Tasks:    taskRepo,
				Events:   eventRepo,
				Now:      time.Now,
			},
		},
		Files: handlers.FileHandler{
			Files: services.FileService{
				Files:     fileRepo,
				Projects:  projectRepo,
				UploadDir: cfg.UploadDir,
				MaxBytes:  cfg.MaxUploadBytes,
				Log:       logger,
			},
		},
		Reports: handlers.ReportHandler{Reports: reportSvc},
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	r := api.NewRouter(cfg, logger, limiter, authSvc.PrincipalFromToken, hs)

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.AppAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
