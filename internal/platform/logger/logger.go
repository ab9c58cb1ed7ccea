package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger wraps a zap SugaredLogger and scrubs key/value pairs before they
// reach the encoder.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         *scrubber
}

// Options controls redaction. Zero value means redaction on, no salt and the
// default free-text limit.
type Options struct {
	DisableRedaction bool
	HashSalt         string
	// MaxTextLen caps values logged under free-text keys (prompt, raw
	// model output, details). Zero uses 512.
	MaxTextLen int
}

// OptionsFromEnv reads LOG_REDACTION_ENABLED and LOG_HASH_SALT.
func OptionsFromEnv() Options {
	var o Options
	switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		o.DisableRedaction = true
	}
	o.HashSalt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	return o
}

func New(mode string) (*Logger, error) {
	return NewWithOptions(mode, OptionsFromEnv())
}

func NewWithOptions(mode string, opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), scrub: newScrubber(opts)}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), scrub: newScrubber(Options{})}
}

func (l *Logger) Sync() { _ = l.SugaredLogger.Sync() }

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.scrub.pairs(kv)...)
}
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.scrub.pairs(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.pairs(kv)...), scrub: l.scrub}
}

const (
	redacted          = "[REDACTED]"
	defaultMaxTextLen = 512
)

type keyRule int

const (
	ruleNone keyRule = iota
	ruleRedact
	ruleHash
	ruleTruncate
)

var (
	redactFragments   = []string{"token", "authorization", "credential", "password", "secret", "cookie", "api_key", "apikey", "email"}
	hashFragments     = []string{"user_id", "owner_id"}
	truncateFragments = []string{"prompt", "raw_output", "details", "body", "error"}
)

type scrubber struct {
	off     bool
	salt    string
	maxText int
}

func newScrubber(o Options) *scrubber {
	limit := o.MaxTextLen
	if limit <= 0 {
		limit = defaultMaxTextLen
	}
	return &scrubber{off: o.DisableRedaction, salt: o.HashSalt, maxText: limit}
}

func (s *scrubber) pairs(kv []interface{}) []interface{} {
	if s == nil || s.off || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, s.value(classify(key), kv[i+1]))
	}
	return out
}

func classify(key string) keyRule {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return ruleNone
	}
	for _, f := range redactFragments {
		if strings.Contains(k, f) {
			return ruleRedact
		}
	}
	for _, f := range hashFragments {
		if strings.Contains(k, f) {
			return ruleHash
		}
	}
	for _, f := range truncateFragments {
		if strings.Contains(k, f) {
			return ruleTruncate
		}
	}
	return ruleNone
}

func (s *scrubber) value(rule keyRule, val interface{}) interface{} {
	switch rule {
	case ruleRedact:
		return redacted
	case ruleHash:
		return s.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = s.value(classify(k), inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = s.value(ruleNone, inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
		if rule == ruleTruncate {
			return s.truncate(v)
		}
		return v
	default:
		return val
	}
}

func (s *scrubber) truncate(v string) string {
	if len(v) <= s.maxText {
		return v
	}
	return fmt.Sprintf("%s...(+%d bytes)", v[:s.maxText], len(v)-s.maxText)
}

func (s *scrubber) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
