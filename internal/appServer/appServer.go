package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xifanezz/medium-clone-sub000/config"
	repository "github.com/xifanezz/medium-clone-sub000/internal/database/postgres"
	cache "github.com/xifanezz/medium-clone-sub000/internal/database/redis"
	"github.com/xifanezz/medium-clone-sub000/internal/service"
	"github.com/xifanezz/medium-clone-sub000/internal/transport"
	"github.com/xifanezz/medium-clone-sub000/internal/worker"

	"github.com/xifanezz/medium-clone-sub000/pkg/postgres"
	"github.com/xifanezz/medium-clone-sub000/pkg/rabbitmq"
	"github.com/xifanezz/medium-clone-sub000/pkg/redis"
	"github.com/xifanezz/medium-clone-sub000/pkg/scheduler"
	"github.com/xifanezz/medium-clone-sub000/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	commentRepo := repository.NewCommentRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize cache
	var commentCache service.CommentCache
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()
	commentCache = cache.NewCacheRepository(redisClient, cfg.App.CacheTTL)

	// Initialize event broker
	var broker *rabbitmq.RabbitMQ
	var publisher service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		broker, err = rabbitmq.NewRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without notifications...", err)
		} else {
			defer broker.Close()
			publisher = broker
			logrus.Info("RabbitMQ broker initialized")
		}
	}

	// Initialize Telegram bot
	var telegramBot *telegram.Bot
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramBot = telegram.NewBot(cfg.Telegram.BotToken)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram bot not configured, chat notifications disabled")
	}

	// Initialize services
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, commentCache, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start notification worker
	if broker != nil {
		notificationWorker := worker.NewNotificationWorker(broker, telegramBot, cfg.Telegram.ChatID)
		go notificationWorker.Start(ctx)
		logrus.Info("Notification worker started")
	}

	// Start ranking scheduler
	rankingScheduler := scheduler.NewScheduler(commentService, cfg.Worker.RankingRebuildInterval)
	go rankingScheduler.Start(ctx)
	logrus.Info("Ranking scheduler started")

	// Setup HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(commentService, []byte(cfg.JWT.Secret))); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
