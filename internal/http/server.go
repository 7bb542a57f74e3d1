package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mkjeong/leadnet/internal/auth"
	"github.com/mkjeong/leadnet/internal/config"
	"github.com/mkjeong/leadnet/internal/http/middleware"
	"github.com/mkjeong/leadnet/internal/metrics"
	"github.com/mkjeong/leadnet/internal/repository"
	"github.com/mkjeong/leadnet/internal/service/hierarchy"
	"github.com/mkjeong/leadnet/internal/service/records"
	"github.com/mkjeong/leadnet/internal/service/users"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, sqlDB *sqlx.DB, rds *redis.Client) *Server {
	// repos
	usersRepo := repository.NewUsersRepository(sqlDB)
	recordsRepo := repository.NewRecordsRepository(sqlDB)

	// services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	resolver := hierarchy.New(usersRepo)
	usersSvc := users.New(usersRepo, resolver, tokens)
	recordsSvc := records.New(recordsRepo, resolver)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// public auth endpoints
	e.POST("/v1/auth/register", registerHandler(usersSvc))
	e.POST("/v1/auth/login", loginHandler(usersSvc))

	// middlewares
	authMW := middleware.JWTMiddleware(tokens)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:user:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)

	v1.GET("/users/me", meHandler(usersSvc))
	v1.GET("/users/network", networkUsersHandler(usersSvc))
	v1.GET("/users/network/usernames", networkUsernamesHandler(usersSvc))
	v1.PUT("/users/password", changePasswordHandler(usersSvc))
	v1.PUT("/users/:id", updateUserHandler(usersSvc))
	v1.DELETE("/users/:id", deleteUserHandler(usersSvc))

	v1.POST("/records", createRecordHandler(recordsSvc))
	v1.GET("/records", listAllHandler(recordsSvc))
	v1.GET("/records/main", listHandler(recordsSvc.ListForMainUser))
	v1.GET("/records/own", listHandler(recordsSvc.ListByOwnUsername))
	v1.GET("/records/network", listHandler(recordsSvc.ListUnderNetwork))
	v1.GET("/records/search", searchNetworkHandler(recordsSvc))
	v1.GET("/records/phone/:phonenumber", findByPhoneHandler(recordsSvc))
	v1.PUT("/records/:id", updateRecordHandler(recordsSvc))
	v1.DELETE("/records/:id", deleteRecordHandler(recordsSvc, usersSvc))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
