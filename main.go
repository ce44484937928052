package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IliaW/bots-checker/config"
	docs "github.com/IliaW/bots-checker/docs"
	"github.com/IliaW/bots-checker/handler"
	"github.com/IliaW/bots-checker/internal/agent"
	"github.com/IliaW/bots-checker/internal/checker"
	"github.com/IliaW/bots-checker/internal/logger"
	"github.com/IliaW/bots-checker/internal/robots"
	"github.com/IliaW/bots-checker/internal/telemetry"
	"github.com/IliaW/bots-checker/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	cfg         *config.Config
	registry    *agent.Registry
	siteChecker *checker.Checker
	metrics     *telemetry.MetricsProvider
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg = config.MustLoad()
	logger.Setup(cfg, os.Stdout)
	metrics = telemetry.SetupMetrics(context.Background(), cfg)
	defer metrics.Close()
	registry = setupRegistry()
	siteChecker = setupChecker()
	slog.Info("starting application on port "+cfg.Port, slog.String("env", cfg.Env),
		slog.Int("agents", registry.Len()))

	port := fmt.Sprintf(":%v", cfg.Port)
	srv := &http.Server{
		Addr:    port,
		Handler: httpServer().Handler(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen:", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("stopping server...")
	ctxT, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctxT)
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Error("shutdown timeout exceeded")
		os.Exit(1)
	}
	slog.Info("server stopped.")
}

func httpServer() *gin.Engine {
	setupGinMod()
	r := gin.New()
	r.UseH2C = true
	r.Use(gin.Recovery())
	r.Use(setCORS())
	r.Use(limitBodySize())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/ping", "/swagger"}}))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	checkApiHandler := handler.NewCheckApiHandler(siteChecker, registry, metrics.ApiMetrics)
	api := r.Group(cfg.ApiUrlPath)
	api.GET("/check", checkApiHandler.GetCheck)
	api.GET("/agents", checkApiHandler.GetAgents)

	docs.SwaggerInfo.Title = fmt.Sprintf("AI Bots Checker API (%s)", cfg.ServiceName)
	docs.SwaggerInfo.Description = "This API checks whether a website is accessible to known AI crawlers."
	docs.SwaggerInfo.Version = cfg.Version
	docs.SwaggerInfo.BasePath = cfg.ApiUrlPath
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound,
			gin.H{"message": fmt.Sprintf("no route found for %s %s", c.Request.Method, c.Request.URL)})
	})

	return r
}

func setCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { //allow all origins and echoes back the caller domain
			return true
		},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-Forwarded-For"},
		AllowCredentials: true,
		MaxAge:           cfg.CorsMaxAgeHours,
	})
}

func limitBodySize() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodySize*1024*1024)
	}
}

func setupGinMod() {
	env := strings.ToLower(cfg.Env)
	if env == "dev" || env == "local" || env == "" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func setupRegistry() *agent.Registry {
	r, err := agent.New(cfg.Agents)
	if err != nil {
		slog.Error("failed to load agents.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	return r
}

func setupChecker() *checker.Checker {
	httpClient := util.NewHttpClient(cfg.HttpClientSettings)
	resolver := robots.NewResolver(httpClient, cfg.CheckerSettings.RobotsUserAgent,
		cfg.CheckerSettings.RobotsTimeout, metrics.CheckMetrics.RobotsResolveCounter)

	return checker.NewChecker(cfg.CheckerSettings, registry, resolver, httpClient, metrics.CheckMetrics)
}
