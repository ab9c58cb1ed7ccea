package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/formflow-backend/internal/data/db"
	"github.com/yungbote/formflow-backend/internal/platform/envutil"
)

type OpenAIConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

type AuthConfig struct {
	// Mode is "jwt" (verify locally) or "remote" (ask the auth service).
	Mode            string `yaml:"mode"`
	JWTSecret       string `yaml:"jwt_secret"`
	JWTIssuer       string `yaml:"jwt_issuer"`
	JWTAudience     string `yaml:"jwt_audience"`
	URL             string `yaml:"url"`
	AnonKey         string `yaml:"anon_key"`
	RedisAddr       string `yaml:"redis_addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type HTTPConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type ObservabilityConfig struct {
	LogMode        string  `yaml:"log_mode"`
	OtelEnabled    bool    `yaml:"otel_enabled"`
	OtelEndpoint   string  `yaml:"otel_endpoint"`
	OtelHeaders    string  `yaml:"otel_headers"`
	OtelInsecure   bool    `yaml:"otel_insecure"`
	OtelSample     float64 `yaml:"otel_sample_ratio"`
	MetricsEnabled bool    `yaml:"metrics_enabled"`
	Environment    string  `yaml:"environment"`
}

type Config struct {
	OpenAI        OpenAIConfig        `yaml:"openai"`
	DB            DBConfig            `yaml:"db"`
	Auth          AuthConfig          `yaml:"auth"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

func defaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			TimeoutSeconds: 60,
		},
		DB: DBConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "formflow",
			SSLMode:    "disable",
			SQLitePath: "formflow.db",
		},
		Auth: AuthConfig{
			Mode:            "jwt",
			CacheTTLSeconds: 300,
		},
		HTTP: HTTPConfig{Port: "8080"},
		Observability: ObservabilityConfig{
			LogMode:     "development",
			OtelSample:  0.1,
			Environment: "development",
		},
	}
}

// LoadConfig layers defaults, the optional YAML file at FORMFLOW_CONFIG_PATH
// and environment variables, in that order.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("FORMFLOW_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) {
	o := &cfg.OpenAI
	o.APIKey = envutil.String("OPENAI_API_KEY", o.APIKey)
	o.BaseURL = envutil.String("OPENAI_BASE_URL", o.BaseURL)
	o.Model = envutil.String("OPENAI_MODEL", o.Model)
	o.Temperature = envutil.Float("OPENAI_TEMPERATURE", o.Temperature)
	o.TimeoutSeconds = envutil.Int("OPENAI_TIMEOUT_SECONDS", o.TimeoutSeconds)

	d := &cfg.DB
	d.Driver = envutil.String("DB_DRIVER", d.Driver)
	d.Host = envutil.String("POSTGRES_HOST", d.Host)
	d.Port = envutil.String("POSTGRES_PORT", d.Port)
	d.User = envutil.String("POSTGRES_USER", d.User)
	d.Password = envutil.String("POSTGRES_PASSWORD", d.Password)
	d.Name = envutil.String("POSTGRES_NAME", d.Name)
	d.SSLMode = envutil.String("POSTGRES_SSLMODE", d.SSLMode)
	d.SQLitePath = envutil.String("SQLITE_PATH", d.SQLitePath)

	a := &cfg.Auth
	a.Mode = strings.ToLower(envutil.String("AUTH_MODE", a.Mode))
	a.JWTSecret = envutil.String("AUTH_JWT_SECRET", a.JWTSecret)
	a.JWTIssuer = envutil.String("AUTH_JWT_ISSUER", a.JWTIssuer)
	a.JWTAudience = envutil.String("AUTH_JWT_AUDIENCE", a.JWTAudience)
	a.URL = envutil.String("AUTH_URL", a.URL)
	a.AnonKey = envutil.String("AUTH_ANON_KEY", a.AnonKey)
	a.RedisAddr = envutil.String("REDIS_ADDR", a.RedisAddr)
	a.CacheTTLSeconds = envutil.Int("IDENTITY_CACHE_TTL_SECONDS", a.CacheTTLSeconds)

	h := &cfg.HTTP
	h.Port = envutil.String("PORT", h.Port)
	h.CORSOrigins = envutil.CSV("CORS_ALLOW_ORIGINS", h.CORSOrigins)

	ob := &cfg.Observability
	ob.LogMode = envutil.String("LOG_MODE", ob.LogMode)
	ob.OtelEnabled = envutil.Bool("OTEL_ENABLED", ob.OtelEnabled)
	ob.OtelEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ob.OtelEndpoint)
	ob.OtelHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ob.OtelHeaders)
	ob.OtelInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", ob.OtelInsecure)
	ob.OtelSample = envutil.Float("OTEL_SAMPLER_RATIO", ob.OtelSample)
	ob.MetricsEnabled = envutil.Bool("METRICS_ENABLED", ob.MetricsEnabled)
	ob.Environment = envutil.String("APP_ENV", ob.Environment)
}

// validate only rejects settings that make startup impossible. A missing
// OpenAI key is reported per request instead.
func (c Config) validate() error {
	switch c.Auth.Mode {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case "remote":
		if c.Auth.URL == "" {
			return fmt.Errorf("AUTH_URL is required when AUTH_MODE=remote")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}
	return nil
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Driver:           c.DB.Driver,
		PostgresHost:     c.DB.Host,
		PostgresPort:     c.DB.Port,
		PostgresUser:     c.DB.User,
		PostgresPassword: c.DB.Password,
		PostgresName:     c.DB.Name,
		PostgresSSLMode:  c.DB.SSLMode,
		SQLitePath:       c.DB.SQLitePath,
	}
}

func (c Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

func (c Config) IdentityCacheTTL() time.Duration {
	return time.Duration(c.Auth.CacheTTLSeconds) * time.Second
}
