package api

import (
	"fmt"
	"net/http"

	"evently/internal/cache"
	"evently/internal/clock"
	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/handlers"
	"evently/internal/logger"
	"evently/internal/messaging"
	"evently/internal/metrics"
	"evently/internal/middleware"
	"evently/internal/notify"
	"evently/internal/repository"
	"evently/internal/service"
	"evently/internal/tickets"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := metrics.RegisterDBStats(db.DB); err != nil {
		logger.Get().Warn("Failed to register database metrics", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Кеш авторизации опционален: без него Basic Auth идет в БД.
	var valkeyClient *cache.ValkeyClient
	if cfg.CacheEnabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Cache)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, auth cache disabled", "error", err)
			valkeyClient = nil
		}
	}

	repos := repository.NewRepositories(db)

	issuer, signer, qr := tickets.NewIssuerFromConfig(cfg.Tickets)
	mailer := notify.NewSMTPMailer(cfg.SMTP)

	services := service.NewServices(service.NewStores(repos), service.Deps{
		Issuer:    issuer,
		Deliverer: tickets.NewDelivery(mailer),
		Publisher: natsClient,
		Verifier:  signer,
		QR:        qr,
		Clock:     clock.NewSystem(),
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server, nil
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlersFromServices(s.services)

	var authCache middleware.AuthCache
	if s.valkey != nil {
		authCache = s.valkey
	}

	// Картинка QR открывается по ссылке из письма, токен сам является доступом
	s.router.GET("/api/tickets/qr/:token", h.TicketQRCode)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, authCache))
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
		}

		ticketRoutes := api.Group("/tickets")
		{
			ticketRoutes.POST("/:id/refund", h.RefundTicket)
			ticketRoutes.POST("/check-in", h.CheckIn)
		}

		api.GET("/wallet", h.GetWallet)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   check.Status,
		"service":  "evently-api",
		"database": check,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
