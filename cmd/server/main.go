package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/api"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/config"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/auth"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/client"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/worker"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/repository"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/usecase"
)

func main() {
	var wg sync.WaitGroup

	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)

	// Запускаем миграции
	if err := runMigrations(cfg.MigrationsPath, dbURL); err != nil {
		log.Fatal("❌ Ошибка миграций:", err)
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(client.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal("❌ Ошибка подключения к БД:", err)
	}
	defer pg.Close()
	fmt.Println("✅ Подключение к БД установлено")

	// Подключаемся к RabbitMQ
	rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal("❌ Ошибка подключения к RabbitMQ:", err)
	}
	defer rabbitMQ.Close()
	fmt.Println("✅ Подключение к RabbitMQ установлено")

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(pg.GetPool())
	taskRepo := repository.NewTaskRepository(pg.GetPool())
	taskAuditRepo := repository.NewTaskAuditRepository(pg.GetPool())
	refreshTokenRepo := repository.NewRefreshTokenRepository(pg.GetPool())

	// Инициализируем сервисы
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	passwordManager := auth.NewPasswordManager()
	taskService := usecase.NewTaskService(taskRepo, userRepo, taskAuditRepo, rabbitMQ)
	userService := usecase.NewUserService(userRepo, taskRepo, refreshTokenRepo)
	authService := usecase.NewAuthService(userRepo, refreshTokenRepo, passwordManager, jwtManager)

	// Запускаем воркер для обработки аудит-сообщений
	auditWorker := worker.NewAuditWorker(rabbitMQ.URL(), rabbitMQ.GetQueueName(), taskAuditRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		auditWorker.Start(workerCtx)
	}()

	// Запускаем HTTP сервер
	router := api.NewRouter(taskService, userService, authService, jwtManager)
	server := &http.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Запуск HTTP сервера на %s...\n", cfg.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()

	fmt.Println("✅ Office Work Tracking System готов к работе!")
	fmt.Println("Для остановки нажмите Ctrl+C")

	// Ждем сигнал завершения
	waitForShutdown(server, workerCancel)
	wg.Wait()
	fmt.Println("✅ Приложение завершено корректно")
}

func waitForShutdown(server *http.Server, workerCancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("Завершение работы...")

	// Останавливаем воркер
	workerCancel()

	// Даем время для graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Ошибка остановки HTTP сервера: %v", err)
	}
}

func runMigrations(migrationsPath, dbURL string) error {
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	fmt.Println("✅ Миграции выполнены успешно")
	return nil
}
