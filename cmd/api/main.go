package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"medrec-llm/internal/config"
	"medrec-llm/internal/db"
	"medrec-llm/internal/email"
	apihttp "medrec-llm/internal/http"
	"medrec-llm/internal/llm"
	"medrec-llm/internal/repository"
	"medrec-llm/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	reportRepo := repository.NewPgReportRepository(pool)
	observationRepo := repository.NewPgObservationRepository(pool)
	assessmentRepo := repository.NewPgAssessmentRepository(pool)
	accessRepo := repository.NewPgAccessRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, logger)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
	reportSvc := service.NewReportService(llmClient, llmClient, reportRepo, observationRepo, logger)
	trendSvc := service.NewTrendService(observationRepo, logger)
	assessmentSvc := service.NewAssessmentService(profileRepo, observationRepo, assessmentRepo, logger)
	accessSvc := service.NewAccessService(accessRepo, userRepo, logger)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	reportHandler := apihttp.NewReportHandler(logger, reportSvc, accessSvc)
	biomarkerHandler := apihttp.NewBiomarkerHandler(logger, trendSvc, accessSvc)
	assessmentHandler := apihttp.NewAssessmentHandler(logger, assessmentSvc)
	accessHandler := apihttp.NewAccessHandler(logger, accessSvc)

	router := apihttp.NewRouter(logger, jwtSvc, userHandler, reportHandler, biomarkerHandler, assessmentHandler, accessHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
