package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/config"
	"github.com/upravdom/problembot/internal/db"
	httpHandlers "github.com/upravdom/problembot/internal/http/handlers"
	httpRouter "github.com/upravdom/problembot/internal/http/router"
	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/render"
	"github.com/upravdom/problembot/internal/repository"
	"github.com/upravdom/problembot/internal/scheduler"
	"github.com/upravdom/problembot/internal/service"
	"github.com/upravdom/problembot/internal/storage"
	"github.com/upravdom/problembot/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.StorageRoot, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	actRenderer, err := render.NewActRenderer()
	if err != nil {
		log.Fatalf("main: не удалось подготовить шаблон акта: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	listRepo := repository.NewListRepository(dbConn)
	problemRepo := repository.NewProblemRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	actRepo := repository.NewActRepository(dbConn)
	staffRepo := repository.NewStaffRepository(dbConn)

	// Стартовые администраторы из конфигурации.
	bootstrapIDs := append(append([]int64{}, cfg.BootstrapAdmins...), cfg.MainAdmins...)
	if err := userRepo.EnsureAdmins(ctx, bootstrapIDs); err != nil {
		log.Fatalf("main: не удалось назначить стартовых администраторов: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)

	// Сервисы.
	roster := service.NewAdminRoster(userRepo, cfg.MainAdmins)
	problemService := service.NewProblemService(problemRepo, listRepo, reportRepo, roster, notifier)
	voteService := service.NewVoteService(reportRepo, problemService, roster, notifier)
	reminderService := service.NewReminderService(problemRepo, notifier)
	actService := service.NewActService(staffRepo, problemRepo, actRepo, actRenderer, fileStorage, notifier)
	statsService := service.NewStatsService(problemRepo, listRepo)
	staffService := service.NewStaffService(staffRepo)

	// Планировщик напоминаний и актов.
	sched := scheduler.New(reminderService, actService)
	if err := sched.Start(ctx, cfg.ReminderCron, cfg.ActSweepCron); err != nil {
		log.Fatalf("main: не удалось запустить планировщик: %v", err)
	}
	defer sched.Stop()

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(userRepo, tokenManager, cfg.GatewayKey)
	reportHandler := httpHandlers.NewReportHandler(problemService, reportRepo, fileStorage, userRepo)
	voteHandler := httpHandlers.NewVoteHandler(voteService, userRepo)
	listHandler := httpHandlers.NewListHandler(problemService, statsService, listRepo, userRepo)
	statsHandler := httpHandlers.NewStatsHandler(statsService, problemRepo, actRepo, staffRepo, userRepo)
	staffHandler := httpHandlers.NewStaffHandler(staffService, userRepo)
	adminHandler := httpHandlers.NewAdminHandler(userRepo, cfg.MainAdmins)
	sweepHandler := httpHandlers.NewSweepHandler(reminderService, actService, userRepo)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, reportHandler, voteHandler, listHandler, statsHandler, staffHandler, adminHandler, sweepHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
