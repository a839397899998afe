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

	"github.com/eagle-bank/eagle-bank/internal/accountdelivery"
	"github.com/eagle-bank/eagle-bank/internal/accountrepo"
	"github.com/eagle-bank/eagle-bank/internal/accountservice"
	"github.com/eagle-bank/eagle-bank/internal/middleware"
	"github.com/eagle-bank/eagle-bank/internal/transactiondelivery"
	"github.com/eagle-bank/eagle-bank/internal/transactionrepo"
	"github.com/eagle-bank/eagle-bank/internal/transactionservice"
	"github.com/eagle-bank/eagle-bank/internal/userdelivery"
	"github.com/eagle-bank/eagle-bank/internal/userrepo"
	"github.com/eagle-bank/eagle-bank/internal/userservice"
	"github.com/eagle-bank/eagle-bank/pkg/configpkg"
	"github.com/eagle-bank/eagle-bank/pkg/currencypkg"
	"github.com/eagle-bank/eagle-bank/pkg/randompkg"
	"github.com/eagle-bank/eagle-bank/pkg/tokenpkg"
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

	tokenMaker, err := tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	accountService := accountservice.New(accountRepo, randompkg.AccountNumber)
	userService := userservice.New(userRepo, accountService)
	transactionService := transactionservice.New(transactionRepo, accountService)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/v1/users", userHandler.Create)
	engine.POST("/v1/auth/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/v1/users/:id", userHandler.Get)
	authRoutes.PATCH("/v1/users/:id", userHandler.Update)
	authRoutes.DELETE("/v1/users/:id", userHandler.Delete)

	authRoutes.POST("/v1/accounts", accountHandler.Create)
	authRoutes.GET("/v1/accounts", accountHandler.List)
	authRoutes.GET("/v1/accounts/:accountNumber", accountHandler.Get)

	authRoutes.POST("/v1/accounts/:accountNumber/transactions", transactionHandler.Create)
	authRoutes.GET("/v1/accounts/:accountNumber/transactions", transactionHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
			return nil, errors.New("cannot register currency validator")
		}

		if err := v.RegisterValidation("transactiontype", transactiondelivery.ValidTransactionType); err != nil {
			return nil, errors.New("cannot register transaction type validator")
		}

		if err := v.RegisterValidation("accounttype", accountdelivery.ValidAccountType); err != nil {
			return nil, errors.New("cannot register account type validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
