// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/firebase"
	"albash_solutions_backend/internal/jobs"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/message"
	"albash_solutions_backend/internal/middleware"
	"albash_solutions_backend/internal/notification"
	platformES "albash_solutions_backend/internal/platform/elasticsearch"
	"albash_solutions_backend/internal/reputation"
	"albash_solutions_backend/internal/shared"
	"albash_solutions_backend/internal/swap"
	"albash_solutions_backend/internal/user"
	"albash_solutions_backend/internal/verification"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	userHandler         *user.Handler
	listingHandler      *listing.Handler
	swapHandler         *swap.Handler
	messageHandler      *message.Handler
	notificationHandler *notification.Handler
	reputationHandler   *reputation.Handler
	verificationHandler *verification.Handler

	// Jobs
	counterOfferExpiryJob *jobs.CounterOfferExpiryJob

	// Middleware instances
	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc

	// Exposed for startup tasks in cmd/server.
	ESClient  *platformES.ESClientWrapper
	AppLogger *zap.Logger
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	listingHandler *listing.Handler,
	swapHandler *swap.Handler,
	messageHandler *message.Handler,
	notificationHandler *notification.Handler,
	reputationHandler *reputation.Handler,
	verificationHandler *verification.Handler,
	counterOfferExpiryJob *jobs.CounterOfferExpiryJob,
	firebaseService *firebase.Service,
	userService shared.Service,
	esClient *platformES.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "AlbashSolutions API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	userHandler.RegisterRoutes(v1, authMW)
	listingHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	swapHandler.RegisterRoutes(v1, authMW)
	messageHandler.RegisterRoutes(v1, authMW)
	notificationHandler.RegisterRoutes(v1, authMW)
	reputationHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	verificationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:            httpServer,
		router:                router,
		cfg:                   cfg,
		logger:                logger,
		userHandler:           userHandler,
		listingHandler:        listingHandler,
		swapHandler:           swapHandler,
		messageHandler:        messageHandler,
		notificationHandler:   notificationHandler,
		reputationHandler:     reputationHandler,
		verificationHandler:   verificationHandler,
		counterOfferExpiryJob: counterOfferExpiryJob,
		authMW:                authMW,
		adminRoleMW:           adminRoleMW,
		ESClient:              esClient,
		AppLogger:             logger,
	}, nil
}

func (s *Server) Start() error {
	if s.counterOfferExpiryJob != nil {
		if err := s.counterOfferExpiryJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start counter-offer expiry job", zap.Error(err))
		}
	} else {
		s.logger.Info("Counter-offer expiry job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.counterOfferExpiryJob != nil {
		s.counterOfferExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
