package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/curriculum-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curriculum-backend/internal/http/middleware"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type RouterConfig struct {
	HealthHandler     *httpH.HealthHandler
	CurriculumHandler *httpH.CurriculumHandler

	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "curriculum"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api")
	{
		// Curriculum
		if cfg.CurriculumHandler != nil {
			cur := api.Group("/curriculum")
			cur.POST("/import", cfg.CurriculumHandler.Import)
			cur.GET("/outcomes", cfg.CurriculumHandler.ListOutcomes)
			cur.GET("/shards", cfg.CurriculumHandler.ListShards)
			cur.POST("/shards/refresh", cfg.CurriculumHandler.RefreshShards)
			cur.DELETE("/shards/cache", cfg.CurriculumHandler.ClearShards)
		}
	}

	return r
}
