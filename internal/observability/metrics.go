package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *family
	apiLatency  *histogramFamily
	apiInflight *family

	generations       *family
	generationLatency *histogramFamily
	questionsWritten  *family
	responses         *family

	dbStats   *family
	redisUp   *family
	redisPing *family

	scrapeInterval time.Duration
}

func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: newCounter("ff_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: newHistogram(
			"ff_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: newGauge("ff_api_inflight_requests", "In-flight API requests.", nil),
		generations: newCounter("ff_form_generations_total", "Form generation runs by outcome.", []string{"outcome"}),
		generationLatency: newHistogram(
			"ff_form_generation_duration_seconds",
			"End to end form generation latency by outcome.",
			[]string{"outcome"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		questionsWritten: newCounter("ff_questions_written_total", "Question rows written by generation.", nil),
		responses:        newCounter("ff_form_responses_total", "Form response submissions by outcome.", []string{"outcome"}),
		dbStats:          newGauge("ff_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:          newGauge("ff_redis_up", "Redis reachable (1) or not (0).", nil),
		redisPing:        newGauge("ff_redis_ping_seconds", "Redis ping latency in seconds.", nil),
		scrapeInterval:   scrapeInterval,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	return writeAll(w,
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.generations, m.generationLatency, m.questionsWritten, m.responses,
		m.dbStats, m.redisUp, m.redisPing,
	)
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	s := strconv.Itoa(status)
	m.apiRequests.Add(1, method, route, s)
	m.apiLatency.Observe(dur.Seconds(), method, route, s)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ObserveGeneration records one pipeline run. outcome is "success" or the
// failure kind.
func (m *Metrics) ObserveGeneration(outcome string, dur time.Duration, questions int) {
	if m == nil {
		return
	}
	m.generations.Add(1, outcome)
	m.generationLatency.Observe(dur.Seconds(), outcome)
	if questions > 0 {
		m.questionsWritten.Add(float64(questions))
	}
}

func (m *Metrics) IncResponse(outcome string) {
	if m == nil {
		return
	}
	m.responses.Add(1, outcome)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *goredis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
