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

	"github.com/bankapp/account-core/internal/accountrepo"
	"github.com/bankapp/account-core/internal/auditsink"
	"github.com/bankapp/account-core/internal/middleware"
	"github.com/bankapp/account-core/internal/operationdelivery"
	"github.com/bankapp/account-core/internal/operationservice"
	"github.com/bankapp/account-core/internal/userdelivery"
	"github.com/bankapp/account-core/internal/userrepo"
	"github.com/bankapp/account-core/internal/userservice"
	"github.com/bankapp/account-core/pkg/configpkg"
	"github.com/bankapp/account-core/pkg/currencypkg"
	"github.com/bankapp/account-core/pkg/tokenpkg"
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

func newTokenMaker(config configpkg.Config) (tokenpkg.Maker, error) {
	if config.TokenScheme == "jwt" {
		return tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	}

	return tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)

	tokenMaker, err := newTokenMaker(config)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	auditSink := auditsink.Fanout{
		auditsink.NewTraceLogger(logger),
		auditsink.NewRepoPGS(conn),
	}

	userService := userservice.New(userRepo)
	operationService := operationservice.New(accountRepo, auditSink)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	operationHandler := operationdelivery.NewHandler(operationService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/balance", operationHandler.Inquire)
	authRoutes.GET("/accounts/:id/balance", operationHandler.InquireAccount)
	authRoutes.POST("/deposits", operationHandler.Deposit)
	authRoutes.POST("/accounts/:id/deposits", operationHandler.DepositAccount)
	authRoutes.POST("/withdrawals", operationHandler.Withdraw)
	authRoutes.POST("/accounts/:id/withdrawals", operationHandler.WithdrawAccount)

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
