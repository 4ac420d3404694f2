package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vector/internal/config"
	"vector/internal/feedback"
	"vector/internal/handlers"
	"vector/internal/jobs"
	"vector/internal/livesession"
	"vector/internal/matching"
	"vector/internal/models"
	"vector/internal/presence"
	"vector/internal/questions"
	"vector/internal/realtime"
	"vector/internal/routers"
	"vector/internal/store"
	"vector/internal/users"
	"vector/internal/utils"
)

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MatchingRequest{},
		&models.LiveInterviewSession{},
		&models.SessionParticipant{},
		&models.InterviewFeedback{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	requestStore := &store.RequestStore{DB: db}
	sessionStore := &store.SessionStore{DB: db}
	feedbackStore := &store.FeedbackStore{DB: db}

	hub := realtime.NewHub()
	tracker := presence.NewTracker()
	pool := questions.NewClient(cfg.QuestionServiceURL)
	directory := users.NewDirectory(cfg.UserServiceURL)

	engine := matching.NewEngine(requestStore, sessionStore, pool, rdb, hub, cfg, logger)
	live := livesession.NewService(sessionStore, pool, rdb, logger)
	collector := feedback.NewCollector(feedbackStore, sessionStore, logger)

	h := handlers.New(engine, live, collector, tracker, sessionStore, hub, directory, pool, cfg, logger)
	hub.OnRoomEmpty = h.AbandonOnEmpty

	sweeper := jobs.NewSweeper(requestStore, engine, cfg.SweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	routers.Register(r, h)

	addr := ":" + cfg.Port
	logger.Info("vector listening", zap.String("addr", addr))
	log.Fatal(http.ListenAndServe(addr, r))
}
