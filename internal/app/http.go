package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpapi "github.com/yungbote/formflow-backend/internal/http"
	httpH "github.com/yungbote/formflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/formflow-backend/internal/http/middleware"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

const serviceName = "formflow-backend"

type Handlers struct {
	Generate *httpH.GenerateHandler
	Form     *httpH.FormHandler
	Health   *httpH.HealthHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, db *gorm.DB, serviceset Services, metrics *observability.Metrics) (Handlers, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := db.DB()
	if err != nil {
		return Handlers{}, err
	}
	return Handlers{
		Generate: httpH.NewGenerateHandler(log, serviceset.Pipeline, metrics),
		Form:     httpH.NewFormHandler(log, serviceset.Forms, metrics),
		Health:   httpH.NewHealthHandler(sqlDB),
	}, nil
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth)}
}

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers, mw Middleware, metrics *observability.Metrics) *gin.Engine {
	log.Info("Wiring router...")
	name := ""
	if cfg.Observability.OtelEnabled {
		name = serviceName
	}
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:             log,
		ServiceName:     name,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		Metrics:         metrics,
		AuthMiddleware:  mw.Auth,
		GenerateHandler: handlerset.Generate,
		FormHandler:     handlerset.Form,
		HealthHandler:   handlerset.Health,
	})
}
