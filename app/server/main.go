package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hirevox/hirevox/config"
	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/api/routes"
	"github.com/hirevox/hirevox/internal/cache"
	"github.com/hirevox/hirevox/internal/extract"
	"github.com/hirevox/hirevox/internal/logger"
	"github.com/hirevox/hirevox/internal/models"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/webhook"
	"github.com/hirevox/hirevox/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	store := settings.NewStore(settings.FromEnv())
	ctx := context.Background()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init failed")
	}
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("Mongo index setup failed")
	}
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init failed")
	}

	if err := config.PostgresDB.AutoMigrate(&models.Vacancy{}, &models.Candidate{}, &models.Interview{}); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	// Repositories
	vacancies := pgrepo.NewVacancyRepo(config.PostgresDB)
	candidates := pgrepo.NewCandidateRepo(config.PostgresDB)
	interviews := pgrepo.NewInterviewRepo(config.PostgresDB)
	transcripts := mongorepo.NewTranscriptRepo(config.MongoDatabase())

	// Resume object storage is optional; without a bucket only extracted text
	// is kept.
	var resumes storage.ResumeStore
	if bucket := os.Getenv("RESUME_BUCKET"); bucket != "" {
		gcsStore, err := storage.NewGCSResumeStore(ctx, bucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init failed")
		}
		defer gcsStore.Close()
		resumes = gcsStore
	}

	redisCache := cache.NewRedisCache(config.RedisClient)

	// Services
	settingsSvc := services.NewSettingsService(store, log)
	vacancySvc := services.NewVacancyService(vacancies, redisCache, store, log)
	rankingSvc := services.NewRankingService(vacancies, candidates, resumes, extract.PlainText{}, store, log)
	analysisSvc := services.NewAnalysisService(interviews, vacancies, candidates, transcripts, store, log)
	interviewSvc := services.NewInterviewService(interviews, transcripts, vacancySvc, store, log)

	// Background task workers
	pool := &workers.TaskWorkerPool{
		Redis:      config.RedisClient,
		Ranking:    rankingSvc,
		Analysis:   analysisSvc,
		Interviews: interviewSvc,
		Vacancies:  vacancySvc,
		Sender:     webhook.NewSender(log),
		Settings:   store,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("task worker startup failed")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Settings:  handlers.NewSettingsHandler(settingsSvc),
		Vacancy:   handlers.NewVacancyHandler(vacancySvc),
		Candidate: handlers.NewCandidateHandler(rankingSvc),
		Interview: handlers.NewInterviewHandler(interviews, transcripts, analysisSvc),
		Webhook:   handlers.NewWebhookHandler(config.RedisClient, ""),
		WS:        handlers.NewInterviewWSHandler(interviewSvc, log),
		Store:     store,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
