package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skybook/internal/cache"
	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/handlers"
	"skybook/internal/logger"
	"skybook/internal/messaging"
	"skybook/internal/middleware"
	"skybook/internal/search"
	"skybook/internal/service"
	"skybook/internal/store"
	"skybook/internal/store/memory"
	"skybook/internal/store/postgres"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	store    store.Store
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	server := &Server{config: cfg}
	server.store = server.openStore()

	if cfg.NATSEnabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", "error", err)
		}
		server.nats = natsClient
	}

	var index service.FlightIndex
	if cfg.SearchEnabled {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Fatal("Failed to connect to Elasticsearch", "error", err)
		}
		index = es
	}

	if cfg.CacheEnabled {
		valkey, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			logger.Fatal("Failed to connect to Valkey", "error", err)
		}
		server.valkey = valkey
	}

	var publisher service.Publisher
	if server.nats != nil {
		publisher = server.nats
	}
	server.services = service.NewServices(server.store, publisher, index)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	server.router = router

	server.setupRoutes()

	return server
}

func (s *Server) openStore() store.Store {
	if s.config.StoreBackend == "memory" {
		logger.Get().Warn("Using in-memory store, data will not survive a restart")
		return memory.New(s.config.LockWait)
	}

	db, err := database.Connect(s.config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}
	s.db = db
	return postgres.New(db, s.config.Database.LockTimeout)
}

func (s *Server) setupRoutes() {
	h := handlers.New(s.services, s.valkey)

	api := s.router.Group("/api")
	{
		flights := api.Group("/flights")
		{
			flights.POST("", h.CreateFlight)
			flights.GET("", h.ListFlights)
		}

		passengers := api.Group("/passengers")
		{
			passengers.POST("", h.CreatePassenger)
			passengers.GET("", h.ListPassengers)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("", h.CreateTicket)
			tickets.PUT("/:id", h.EditTicket)
			tickets.DELETE("/:id", h.DeleteTicket)
			tickets.POST("/book", h.BookTicket)
			tickets.POST("/:id/cancel", h.CancelTicket)
			tickets.POST("/:id/promote", h.PromoteTicket)
		}

		api.POST("/inventory/seat-freed", h.SeatFreed)

		maintenance := api.Group("/maintenance")
		{
			maintenance.POST("", h.CreateMaintenance)
			maintenance.GET("", h.ListMaintenance)
			maintenance.GET("/last", h.LastMaintenance)
			maintenance.GET("/next", h.NextMaintenance)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/load-factor/:flightId", h.LoadFactor)
			reports.GET("/fleet-load-factor", h.FleetLoadFactor)
			reports.GET("/booking-percentage", h.BookingPercentage)
			reports.GET("/active-flights", h.ActiveFlights)
			reports.GET("/cancelled-tickets", h.CancelledTickets)
			reports.GET("/payments", h.Payments)
			reports.GET("/admin-changes", h.AdminChanges)
			reports.GET("/waitlist/:flightId", h.Waitlist)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"service": "skybook-api",
		"version": "1.0.0",
	}

	if s.db != nil {
		check := s.db.HealthCheck(c.Request.Context())
		resp["database"] = check
		if check.Status != "healthy" {
			resp["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for handler tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}
	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}
	return s.store.Close()
}
