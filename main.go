package main

import (
	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"factify/internal/access"
	"factify/internal/catalog"
	"factify/internal/config"
	"factify/internal/db"
	"factify/internal/http/handlers"
	appmw "factify/internal/http/middleware"
	"factify/internal/incentive"
	"factify/internal/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	if err := db.EnsureBootstrapAdmin(sqlDB, cfg); err != nil {
		logger.Fatal("failed to ensure bootstrap admin", zap.Error(err))
	}
	if err := db.EnsureBootstrapAPIKey(sqlDB, cfg); err != nil {
		logger.Warn("failed to ensure bootstrap API key", zap.Error(err))
	}

	metrics.Register()
	db.StartRetentionWorker(sqlDB, logger, cfg.RetentionDays)

	store := access.NewStore(sqlDB, logger)
	cat := catalog.New(sqlDB, logger)
	recorder := access.NewRecorder(store, logger)
	aggregator := incentive.NewAggregator(store, cat, sqlDB, logger)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.PrometheusMetrics())

	auth := appmw.BearerAuth(sqlDB)
	optAuth := appmw.OptionalBearerAuth(sqlDB)
	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return auth(appmw.RequireAdmin(h))
	}

	r.POST("/v1/search", optAuth(handlers.SearchHandler(cat, recorder, cfg, logger)))

	r.POST("/v1/documents", auth(handlers.RegisterDocument(cat)))
	r.GET("/v1/documents/{id}", auth(handlers.GetDocument(cat)))
	r.GET("/v1/documents/{id}/stats", auth(handlers.DocumentStats(store)))

	r.GET("/v1/access/history", auth(handlers.AccessHistory(store)))
	r.GET("/v1/incentives/summary", auth(handlers.IncentiveSummary(aggregator)))

	r.GET("/v1/admin/activity/weekly", admin(handlers.WeeklyActivity(store)))
	r.GET("/v1/admin/incentives/{owner}", admin(handlers.SavedIncentiveSummary(aggregator)))
	r.POST("/v1/admin/incentives/recalculate", admin(handlers.RecalculateIncentives(aggregator)))
	r.POST("/v1/admin/seed", admin(handlers.SeedAccessEvents(store, cat)))

	handler := appmw.RequestLogger(logger)(r.Handler)

	logger.Info("factify listening", zap.String("addr", cfg.ListenAddr))
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
