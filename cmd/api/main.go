package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/config"
	"github.com/xavierca1/agency-funnel/internal/entity"
	"github.com/xavierca1/agency-funnel/internal/infra/database"
	"github.com/xavierca1/agency-funnel/internal/infra/http/handlers"
	"github.com/xavierca1/agency-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/agency-funnel/internal/infra/logger"
	"github.com/xavierca1/agency-funnel/internal/infra/mail"
	"github.com/xavierca1/agency-funnel/internal/infra/memstore"
	"github.com/xavierca1/agency-funnel/internal/infra/queue"
	"github.com/xavierca1/agency-funnel/internal/infra/worker"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

func main() {
	cfg, err := config.Load("agency-funnel")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	var (
		tx     entity.Transactor
		pinger handlers.Pinger
	)
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		tx = memstore.New()
	default:
		db, err := database.NewDBConnection(ctx, cfg.DB.URL, database.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()

		if cfg.DB.Migrate {
			if err := database.Migrate(ctx, db); err != nil {
				log.Fatal("migration failed", zap.Error(err))
			}
		}
		tx = database.NewTransactor(db)
		pinger = db
	}

	// 2. Events and notifications
	var (
		events usecase.EventPublisher
		broker handlers.BrokerConn
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("rabbitmq unavailable", zap.Error(err))
		}
		defer rabbitMQ.Close()

		events = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn

		var notifier queue.SalesNotifier
		if cfg.Mail.Enabled() {
			notifier = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.SalesNotify)
		}

		consumeCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			log.Fatal("rabbitmq consumer channel", zap.Error(err))
		}
		defer consumeCh.Close()

		w := queue.NewWorker(consumeCh, notifier, log.Named("worker"))
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				log.Error("funnel worker stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, funnel events are not published")
	}

	// 3. Use cases
	engine := usecase.NewFunnelEngine(tx, events, log.Named("funnel"))
	createLead := usecase.NewCreateLeadUseCase(tx.Stores().Leads, log.Named("leads"))
	query := usecase.NewFunnelQueryUseCase(tx.Stores())

	if cfg.ReconcileInterval > 0 {
		rw := worker.NewReconcileWorker(engine, cfg.ReconcileInterval, log.Named("reconcile"), middleware.RecordReconcile)
		go rw.Start(ctx)
	}

	// 4. HTTP
	router := handlers.NewRouter(handlers.RouterConfig{
		Leads: handlers.NewLeadHandler(createLead, engine, query,
			handlers.NewRateLimiter(cfg.Server.LeadRateLimit, cfg.Server.LeadRateWindow)),
		MQLs:           handlers.NewMQLHandler(engine, query),
		SQLs:           handlers.NewSQLHandler(engine, query),
		Health:         handlers.NewHealthHandler(pinger, broker, cfg.Storage),
		Logger:         log.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
