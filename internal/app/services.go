package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yungbote/formflow-backend/internal/modules/formgen"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"github.com/yungbote/formflow-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Forms    services.FormService
	Pipeline *formgen.Pipeline
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	verifier, err := wireVerifier(cfg)
	if err != nil {
		return Services{}, err
	}
	if clients.Redis != nil {
		verifier = services.NewCachedVerifier(log, verifier, clients.Redis, cfg.IdentityCacheTTL())
	}
	auth := services.NewAuthService(log, verifier)

	forms := services.NewFormService(log, reposet.Form, reposet.Question, reposet.Response, reposet.Answer)

	pipeline := formgen.NewPipeline(log, formgen.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
	}, auth, clients.OpenAI, formgen.NewRepoStore(reposet.Form, reposet.Question))

	return Services{Auth: auth, Forms: forms, Pipeline: pipeline}, nil
}

func wireVerifier(cfg Config) (services.IdentityVerifier, error) {
	switch cfg.Auth.Mode {
	case "remote":
		v, err := services.NewRemoteVerifier(&http.Client{Timeout: 10 * time.Second}, cfg.Auth.URL, cfg.Auth.AnonKey)
		if err != nil {
			return nil, fmt.Errorf("init remote verifier: %w", err)
		}
		return v, nil
	default:
		v, err := services.NewJWTVerifier(services.JWTConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.JWTIssuer,
			Audience: cfg.Auth.JWTAudience,
			Leeway:   30 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("init jwt verifier: %w", err)
		}
		return v, nil
	}
}
