package consumers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/logger"
	"evently/internal/messaging"
	"evently/internal/metrics"
	"evently/internal/models"
	"evently/internal/notify"
	"evently/internal/repository"

	"github.com/nats-io/stan.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const queueGroup = "consumers"

type ConsumerService struct {
	db            *database.DB
	nats          *messaging.NATSClient
	handlers      *Handlers
	metricsServer *http.Server
	subs          []stan.Subscription
}

func NewConsumerService(cfg *config.Config, metricsPort string) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := metrics.RegisterDBStats(db.DB); err != nil {
		logger.Get().Warn("Failed to register database metrics", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)
	handlers := NewHandlers(repos.Users, repos.Events, notify.NewSMTPMailer(cfg.SMTP))

	cs := &ConsumerService{
		db:       db,
		nats:     natsClient,
		handlers: handlers,
	}

	if metricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		cs.metricsServer = &http.Server{
			Addr:              ":" + metricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return cs, nil
}

func (cs *ConsumerService) Start() error {
	log := logger.Get()
	log.Info("Starting NATS consumers...")

	routes := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventBookingCompleted, cs.handlers.HandleBookingCompleted},
		{models.EventTicketRefunded, cs.handlers.HandleTicketRefunded},
		{models.EventTicketCheckedIn, cs.handlers.HandleTicketCheckedIn},
	}

	for _, r := range routes {
		sub, err := cs.nats.SubscribeQueue(r.subject, queueGroup, r.handler)
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	if cs.metricsServer != nil {
		go func() {
			if err := cs.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	log.Info("All consumers started successfully", "subjects", len(routes))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	log := logger.Get()
	log.Info("Shutting down consumer service...")

	// Close keeps the durable queue position, Unsubscribe would drop it.
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			log.Error("Error closing subscription", "error", err)
		}
	}

	if cs.metricsServer != nil {
		if err := cs.metricsServer.Shutdown(ctx); err != nil {
			log.Error("Error stopping metrics server", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
