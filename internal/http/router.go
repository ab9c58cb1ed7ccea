package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/formflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/formflow-backend/internal/http/middleware"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	GenerateHandler *httpH.GenerateHandler
	FormHandler     *httpH.FormHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
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
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Generation authenticates inside the pipeline so that stage order
		// (api key, prompt, credential) decides which failure is reported.
		if cfg.GenerateHandler != nil {
			api.POST("/generate-form", cfg.GenerateHandler.GenerateForm)
		}

		// Form player (public)
		if cfg.FormHandler != nil {
			api.GET("/forms/:id", cfg.FormHandler.GetForm)
			api.POST("/forms/:id/responses", cfg.FormHandler.SubmitResponse)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.FormHandler != nil {
			protected.GET("/forms", cfg.FormHandler.ListMyForms)
		}
	}

	return r
}
