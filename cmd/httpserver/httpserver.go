// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/concierge-bank/backend/internal/accountdelivery"
	"github.com/concierge-bank/backend/internal/accountrepo"
	"github.com/concierge-bank/backend/internal/accountservice"
	"github.com/concierge-bank/backend/internal/middleware"
	"github.com/concierge-bank/backend/internal/notificationdelivery"
	"github.com/concierge-bank/backend/internal/notificationrepo"
	"github.com/concierge-bank/backend/internal/notificationservice"
	"github.com/concierge-bank/backend/internal/sessiondelivery"
	"github.com/concierge-bank/backend/internal/sessionrepo"
	"github.com/concierge-bank/backend/internal/sessionservice"
	"github.com/concierge-bank/backend/internal/transactiondelivery"
	"github.com/concierge-bank/backend/internal/transactionrepo"
	"github.com/concierge-bank/backend/internal/transactionservice"
	"github.com/concierge-bank/backend/internal/transferdelivery"
	"github.com/concierge-bank/backend/internal/transferrepo"
	"github.com/concierge-bank/backend/internal/transferservice"
	"github.com/concierge-bank/backend/internal/userdelivery"
	"github.com/concierge-bank/backend/internal/userrepo"
	"github.com/concierge-bank/backend/internal/userservice"
	"github.com/concierge-bank/backend/pkg/configpkg"
	"github.com/concierge-bank/backend/pkg/currencypkg"
	"github.com/concierge-bank/backend/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	notificationRepo := notificationrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)
	transactionService := transactionservice.New(transactionRepo, accountService)

	emailSender := notificationservice.NewRelaySender(config.EmailRelayURL, config.EmailRelayTimeout)
	notificationService := notificationservice.New(notificationRepo, userRepo, emailSender)

	transferService := transferservice.New(transferRepo, accountService, notificationService)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	transferHandler := transferdelivery.NewHandler(transferService, userService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	notificationHandler := notificationdelivery.NewHandler(notificationService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id/transactions", transactionHandler.History)

	authRoutes.POST("/transfers", transferHandler.Create)

	authRoutes.GET("/notifications", notificationHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
