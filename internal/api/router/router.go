package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/quote-inbox/docs"
	"github.com/d60-Lab/quote-inbox/internal/api/handler"
	"github.com/d60-Lab/quote-inbox/internal/api/middleware"
)

type Config struct {
	JWTSecret   string
	RateLimit   float64
	RateBurst   int
	ServiceName string
	Tracing     bool
	Sentry      bool
	Swagger     bool
}

// New 组装 gin 引擎：otel → recovery → sentry → 日志 → gzip → 路由
func New(h *handler.Handler, cfg Config) *gin.Engine {
	r := gin.New()

	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(gin.Recovery())
	if cfg.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", h.Healthz)
	if cfg.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	v1 := r.Group("/api/v1", limiter.Middleware(), middleware.Auth(cfg.JWTSecret))
	{
		v1.GET("/inbox", h.GetInbox)
	}
	return r
}
