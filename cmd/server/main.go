package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/rDingyFourFour/handybob-sub000/internal/config"
	"github.com/rDingyFourFour/handybob-sub000/internal/controller"
	"github.com/rDingyFourFour/handybob-sub000/internal/db"
	"github.com/rDingyFourFour/handybob-sub000/internal/followup"
	"github.com/rDingyFourFour/handybob-sub000/internal/handler"
	"github.com/rDingyFourFour/handybob-sub000/internal/logging"
	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
	"github.com/rDingyFourFour/handybob-sub000/internal/queue"
	"github.com/rDingyFourFour/handybob-sub000/internal/repository"
	"github.com/rDingyFourFour/handybob-sub000/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("failed to read .env, relying on OS environment variables:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(conn, cfg.MigrationsPath, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	schemaCache, err := repository.NewSchemaCache(cfg.SchemaCacheSize)
	if err != nil {
		logger.Fatal("failed to build schema cache", zap.Error(err))
	}
	schema := &repository.SchemaVerifier{DB: conn, Cache: schemaCache}

	customerRepo := &repository.CustomerRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}

	var q queue.Queue
	switch cfg.QueueDriver {
	case config.QueueAMQP:
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("queue unavailable", zap.Error(err))
		}
		defer amqpQueue.Close()
		q = amqpQueue
	default:
		memQueue := queue.NewInMemoryQueue(logger)
		worker := service.NewWorker(messageRepo, customerRepo, service.LogSender{Logger: logger}, logger)
		worker.Metrics = m
		if err := queue.StartFollowupSendSubscriber(memQueue, worker, 30*time.Second, logger); err != nil {
			logger.Fatal("failed to start delivery subscriber", zap.Error(err))
		}
		q = memQueue
	}

	engine := followup.NewEngine()
	engine.DefaultDelayDays = cfg.DefaultDelayDays
	engine.SMSThresholdDays = cfg.SMSThresholdDays

	followupService := &service.FollowupService{
		Engine:    engine,
		Jobs:      &repository.JobRepository{DB: conn},
		Customers: customerRepo,
		Quotes:    &repository.QuoteRepository{DB: conn},
		Calls:     &repository.CallRepository{DB: conn},
		Invoices:  &repository.InvoiceRepository{DB: conn},
		Messages:  messageRepo,
		Queue:     q,
		Metrics:   m,
		Logger:    logger,
	}
	outcomeService := &service.CallOutcomeService{
		Calls:   &repository.CallRepository{DB: conn},
		Schema:  schema,
		Metrics: m,
		Logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	(&handler.HealthHandler{DB: conn, Schema: schema, Gatherer: reg}).Routes(r)
	(&controller.FollowupController{Service: followupService, Logger: logger}).Routes(r)
	(&controller.CallController{Service: outcomeService}).Routes(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("queue", cfg.QueueDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
	if memQueue, ok := q.(*queue.InMemoryQueue); ok {
		memQueue.Wait()
	}
	logger.Info("server stopped")
}
