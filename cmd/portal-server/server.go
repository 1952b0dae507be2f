package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/wellness/portal/internal/config"
	"github.com/wellness/portal/internal/domain/account"
	"github.com/wellness/portal/internal/domain/careteam"
	"github.com/wellness/portal/internal/domain/goal"
	"github.com/wellness/portal/internal/platform/auth"
	"github.com/wellness/portal/internal/platform/db"
	"github.com/wellness/portal/internal/platform/middleware"
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	stores *stores
	shared *shared
	policy *auth.Policy

	accounts *account.Service
	goals    *goal.Service
	careteam *careteam.Service
}

func newApp(cfg *config.Config, logger zerolog.Logger, st *stores, sh *shared) (*app, error) {
	merge, err := account.ParseMergePolicy(cfg.ProfileMerge)
	if err != nil {
		return nil, err
	}
	policy := auth.NewPolicy(auth.PolicyOptions{RestrictPatientAdmin: cfg.RestrictPatientAdmin})

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	accounts := account.NewService(st.users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, policy)
	accounts.SetEvaluator(account.NewEvaluator(merge))
	accounts.SetRevocationStore(sh.revocations)

	goals := goal.NewService(st.goals, policy)

	return &app{
		cfg:      cfg,
		logger:   logger,
		stores:   st,
		shared:   sh,
		policy:   policy,
		accounts: accounts,
		goals:    goals,
		careteam: careteam.NewService(st.users, goals, policy),
	}, nil
}

func (a *app) rateLimiter() echo.MiddlewareFunc {
	cfg := middleware.RateLimitConfig{
		RequestsPerSecond: a.cfg.RateLimitRPS,
		BurstSize:         a.cfg.RateLimitBurst,
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg = middleware.DefaultRateLimitConfig()
	}
	if a.shared.rdb != nil {
		return middleware.RedisRateLimit(cfg, a.shared.rdb, a.logger)
	}
	return middleware.RateLimit(cfg)
}

func (a *app) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(a.logger)

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(a.cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(a.cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(a.rateLimiter())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Wellness API is running"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(a.stores.probe))

	// Only the API groups authenticate; unknown paths elsewhere stay 404.
	jwt := auth.JWTMiddleware(auth.JWTConfig{
		SigningKey:  []byte(a.cfg.JWTSecret),
		Revocations: a.shared.revocations,
		Skipper:     auth.AuthSkipper,
	})
	authGroup := e.Group("/api/auth", jwt)
	data := e.Group("/api/data", jwt)

	account.NewHandler(a.accounts, a.policy).RegisterRoutes(authGroup, data)
	goal.NewHandler(a.goals, a.policy).RegisterRoutes(data)
	careteam.NewHandler(a.careteam, a.policy).RegisterRoutes(data)

	return e
}
