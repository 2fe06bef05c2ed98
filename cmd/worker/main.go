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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/rDingyFourFour/handybob-sub000/internal/config"
	"github.com/rDingyFourFour/handybob-sub000/internal/db"
	"github.com/rDingyFourFour/handybob-sub000/internal/handler"
	"github.com/rDingyFourFour/handybob-sub000/internal/logging"
	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
	"github.com/rDingyFourFour/handybob-sub000/internal/queue"
	"github.com/rDingyFourFour/handybob-sub000/internal/repository"
	"github.com/rDingyFourFour/handybob-sub000/internal/service"
)

const sendTimeout = 30 * time.Second

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

	q, err := queue.DialAMQP(cfg.AMQPURL, logger)
	if err != nil {
		logger.Fatal("queue unavailable", zap.Error(err))
	}
	defer q.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	worker := newWorker(&repository.MessageRepository{DB: conn}, &repository.CustomerRepository{DB: conn}, m, logger)
	if err := run(q, worker, logger); err != nil {
		logger.Fatal("failed to start consumer", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.WorkerHTTPAddr,
		Handler:           opsRouter(conn, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	logger.Info("worker running, waiting for messages",
		zap.String("queue", queue.FollowupSendTopic), zap.String("metrics_addr", cfg.WorkerHTTPAddr))
	<-ctx.Done()
	logger.Info("worker stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newWorker(messages repository.MessageRepositoryInterface, customers repository.CustomerRepositoryInterface, m *metrics.Metrics, logger *zap.Logger) *service.Worker {
	w := service.NewWorker(messages, customers, service.LogSender{Logger: logger}, logger)
	w.Metrics = m
	return w
}

// opsRouter serves /health and /metrics for the worker process.
func opsRouter(pinger handler.Pinger, g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	(&handler.HealthHandler{DB: pinger, Gatherer: g}).Routes(r)
	return r
}

func run(q queue.Queue, w queue.MessageProcessor, logger *zap.Logger) error {
	return queue.StartFollowupSendSubscriber(q, w, sendTimeout, logger)
}
