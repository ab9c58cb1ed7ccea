package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

const (
	defaultBaseURL   = "https://api.openai.com"
	defaultModel     = "gpt-4o-mini"
	chatPath         = "/v1/chat/completions"
	maxErrorBodySize = 1 << 20
)

type Message struct {
	Role    string
	Content string
}

type JSONSchema struct {
	Name   string
	Schema map[string]any
	Strict bool
}

type CompletionRequest struct {
	Messages []Message
	Schema   *JSONSchema

	// Model and Temperature override the client defaults when set.
	Model       string
	Temperature *float64
}

// Client issues a single chat completion and returns the raw text of the
// first choice. It never retries.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return newClient(log, cfg, &http.Client{Transport: tr, Timeout: timeout}), nil
}

// NewClientWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewClientWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if httpClient == nil {
		return NewClient(log, cfg)
	}
	return newClient(log, cfg, httpClient), nil
}

func newClient(log *logger.Logger, cfg Config, httpClient *http.Client) *client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Temperature    float64        `json:"temperature"`
}

func (c *client) buildRequest(req CompletionRequest) chatCompletionRequest {
	msgs := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	out := chatCompletionRequest{
		Model:       c.modelFor(req),
		Messages:    msgs,
		Temperature: c.temperature,
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.Schema != nil {
		out.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   req.Schema.Name,
				"schema": req.Schema.Schema,
				"strict": req.Schema.Strict,
			},
		}
	}
	return out
}

func (c *client) modelFor(req CompletionRequest) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	return c.model
}

func (c *client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", errors.New("no messages")
	}

	ctx, span := otel.Tracer("formflow/openai").Start(ctx, "openai.chat_completions")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.modelFor(req)))

	body := c.buildRequest(req)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.Warn("OpenAI request failed", "path", chatPath, "error", err.Error())
		return "", &TransportError{Err: err}
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize*8))
	_ = resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if readErr != nil {
		span.RecordError(readErr)
		span.SetStatus(codes.Error, "read body")
		return "", &TransportError{Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBodySize {
			raw = raw[:maxErrorBodySize]
		}
		herr := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		span.RecordError(herr)
		span.SetStatus(codes.Error, "upstream status")
		c.log.Warn("OpenAI non-success status",
			"path", chatPath,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", herr
	}

	var payload any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			derr := &DecodeError{Body: string(raw), Err: err}
			span.RecordError(derr)
			span.SetStatus(codes.Error, "decode")
			return "", derr
		}
	}

	text, ok := ExtractOutputText(payload)
	if !ok {
		span.SetStatus(codes.Error, "empty completion")
		return "", &EmptyCompletionError{Payload: payload}
	}

	c.log.Debug("OpenAI completion received",
		"model", body.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}

// ExtractOutputText returns choices[0].message.content when it is a
// non-empty string. Every other shape yields false.
func ExtractOutputText(payload any) (string, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	choices, ok := root["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].(string)
	if !ok || content == "" {
		return "", false
	}
	return content, true
}
