package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"devconnect/config"
	"devconnect/infrastructure"
	"devconnect/interfaces"
	"devconnect/service"
)

const serviceName = "devconnect-api"

// eventQueue is satisfied by both the RabbitMQ client and the in-process queue.
type eventQueue interface {
	service.Publisher
	Consume(ctx context.Context, handler infrastructure.EventHandler) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		infrastructure.InitLogger("info", "text").WithError(err).Fatal("invalid configuration")
	}
	log := infrastructure.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infrastructure.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.WithError(err).Fatal("failed to set up tracing")
	}

	// Connect DB
	db, err := infrastructure.OpenDatabase(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer infrastructure.CloseDatabase(db)

	hasher := infrastructure.NewPasswordHasher(0)
	if cfg.SeedDemo {
		if err := infrastructure.SeedDemoData(ctx, db, hasher); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
	}

	// Connect RabbitMQ, or keep events in process
	var queue eventQueue
	if cfg.RabbitMQURL != "" {
		rmq, err := infrastructure.NewRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		queue = rmq
	} else {
		log.Warn("RABBITMQ_URL not set, using in-process event queue")
		queue = infrastructure.NewMemoryQueue(256)
	}

	var scorer service.Scorer
	if cfg.GeminiAPIKey != "" {
		scorer = infrastructure.NewGeminiClient(cfg.GeminiAPIKey)
	} else {
		log.Info("GEMINI_API_KEY not set, screening uses skill overlap")
	}
	screening := service.NewScreeningService(db, scorer)
	if err := queue.Consume(ctx, screening.HandleEvent); err != nil {
		log.WithError(err).Fatal("failed to start screening worker")
	}

	resumes, err := infrastructure.NewResumeExtractor(cfg.MaxResumeSizeBytes, cfg.UnidocLicenseKey)
	if err != nil {
		log.WithError(err).Fatal("failed to set up resume extraction")
	}

	svc := service.New(db,
		infrastructure.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		hasher,
		queue,
		service.Options{JobOwnershipCheck: cfg.JobOwnershipCheck},
	)

	router := interfaces.NewRouter(interfaces.RouterConfig{
		ServiceName:        serviceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Tracing:            cfg.OTLPEndpoint != "",
	})
	interfaces.NewHTTPHandler(router, svc, resumes)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := queue.Close(); err != nil {
		log.WithError(err).Warn("failed to close event queue")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.WithError(err).Warn("failed to flush traces")
	}
}
