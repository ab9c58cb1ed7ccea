package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/formflow-backend/internal/data/repos"
	"github.com/yungbote/formflow-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/formflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/formflow-backend/internal/http/middleware"
	"github.com/yungbote/formflow-backend/internal/modules/formgen"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/openai"
	"github.com/yungbote/formflow-backend/internal/services"
)

const testSecret = "router-test-secret"

type cannedCompletion struct {
	text  string
	calls int
}

func (c *cannedCompletion) Complete(ctx context.Context, req openai.CompletionRequest) (string, error) {
	c.calls++
	return c.text, nil
}

type stack struct {
	router *gin.Engine
	gen    *cannedCompletion
}

func newStack(t *testing.T, apiKey string) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	formRepo := repos.NewFormRepo(db, log)
	questionRepo := repos.NewQuestionRepo(db, log)

	verifier, err := services.NewJWTVerifier(services.JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}
	auth := services.NewAuthService(log, verifier)
	forms := services.NewFormService(log, formRepo, questionRepo, repos.NewResponseRepo(db, log), repos.NewAnswerRepo(db, log))

	gen := &cannedCompletion{text: `{"title":"Team survey","questions":[` +
		`{"title":"Name?","type":"text"},{"title":"Team?","type":"mcq"},{"title":"Anything else?","type":"text"}]}`}
	pipeline := formgen.NewPipeline(log, formgen.Config{APIKey: apiKey, Temperature: 0.2}, auth, gen, formgen.NewRepoStore(formRepo, questionRepo))
	metrics := observability.NewMetrics(time.Minute)

	r := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		GenerateHandler: httpH.NewGenerateHandler(log, pipeline, metrics),
		FormHandler:     httpH.NewFormHandler(log, forms, metrics),
		HealthHandler:   httpH.NewHealthHandler(nil),
	})
	return &stack{router: r, gen: gen}
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (s *stack) do(t *testing.T, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func TestGenerateThenPlayForm(t *testing.T) {
	s := newStack(t, "sk-test")
	user := uuid.New()
	tok := token(t, user)

	code, body := s.do(t, http.MethodPost, "/api/generate-form", tok, map[string]any{"prompt": "team survey"})
	if code != http.StatusOK {
		t.Fatalf("generate: %d %v", code, body)
	}
	formID, _ := body["formId"].(string)
	if _, err := uuid.Parse(formID); err != nil {
		t.Fatalf("formId: %v", body)
	}

	code, body = s.do(t, http.MethodGet, "/api/forms/"+formID, "", nil)
	if code != http.StatusOK {
		t.Fatalf("get form: %d %v", code, body)
	}
	form := body["form"].(map[string]any)
	qs := form["questions"].([]any)
	if len(qs) != 3 {
		t.Fatalf("questions: %v", qs)
	}
	for i, raw := range qs {
		q := raw.(map[string]any)
		if q["orderIndex"] != float64(i) {
			t.Fatalf("question %d: %v", i, q)
		}
	}
	if qs[1].(map[string]any)["type"] != "mcq" {
		t.Fatalf("second question should be mcq: %v", qs[1])
	}

	code, body = s.do(t, http.MethodGet, "/api/forms", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d %v", code, body)
	}
	list := body["forms"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["id"] != formID {
		t.Fatalf("list: %v", list)
	}

	firstQ := qs[0].(map[string]any)["id"].(string)
	code, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/forms/%s/responses", formID), "",
		map[string]any{"answers": map[string]string{firstQ: "Ada"}})
	if code != http.StatusOK || body["responseId"] == nil {
		t.Fatalf("submit: %d %v", code, body)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	s := newStack(t, "")
	code, body := s.do(t, http.MethodPost, "/api/generate-form", "", map[string]any{"prompt": ""})
	if code != http.StatusInternalServerError || body["error"] != "Missing OPENAI_API_KEY." {
		t.Fatalf("got %d %v", code, body)
	}
	if s.gen.calls != 0 {
		t.Fatalf("generation must not be called")
	}
}

func TestGenerateRejectsBadToken(t *testing.T) {
	s := newStack(t, "sk-test")
	code, body := s.do(t, http.MethodPost, "/api/generate-form", "not-a-jwt", map[string]any{"prompt": "x"})
	if code != http.StatusUnauthorized || body["error"] != "Unauthorized." {
		t.Fatalf("got %d %v", code, body)
	}
	if s.gen.calls != 0 {
		t.Fatalf("generation must not be called")
	}
}

func TestListFormsRequiresAuth(t *testing.T) {
	s := newStack(t, "sk-test")
	if code, _ := s.do(t, http.MethodGet, "/api/forms", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("status: %d", code)
	}
}

func TestGetUnknownForm(t *testing.T) {
	s := newStack(t, "sk-test")
	if code, _ := s.do(t, http.MethodGet, "/api/forms/"+uuid.NewString(), "", nil); code != http.StatusNotFound {
		t.Fatalf("status: %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/forms/not-a-uuid", "", nil); code != http.StatusBadRequest {
		t.Fatalf("status: %d", code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newStack(t, "sk-test")
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("ff_api_requests_total")) {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
