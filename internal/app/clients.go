package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"github.com/yungbote/formflow-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI openai.Client
	Redis  *goredis.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	oa, err := openai.NewClient(log, openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAITimeout(),
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init openai: %w", err)
	}
	out.OpenAI = oa

	if cfg.Auth.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; identity cache disabled")
		return out, nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Auth.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("redis ping: %w", err)
	}
	out.Redis = rdb
	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
