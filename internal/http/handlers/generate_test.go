package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/formflow-backend/internal/modules/formgen"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

type fakeGenerator struct {
	res   formgen.Result
	fail  *formgen.Failure
	got   formgen.Request
	calls int
}

func (f *fakeGenerator) Run(ctx context.Context, req formgen.Request) (formgen.Result, *formgen.Failure) {
	f.calls++
	f.got = req
	return f.res, f.fail
}

func serveGenerate(t *testing.T, gen *fakeGenerator, body string, auth string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/generate-form", NewGenerateHandler(logger.Nop(), gen, nil).GenerateForm)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-form", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGenerateFormSuccess(t *testing.T) {
	id := uuid.New()
	gen := &fakeGenerator{res: formgen.Result{FormID: id, QuestionCount: 3}}
	rec := serveGenerate(t, gen, `{"prompt":"a survey"}`, "Bearer tok")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
	if diff := cmp.Diff(map[string]any{"formId": id.String()}, decodeBody(t, rec)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if gen.got.Prompt != "a survey" || gen.got.Authorization != "Bearer tok" {
		t.Fatalf("request passed through: %+v", gen.got)
	}
}

func TestGenerateFormLenientBody(t *testing.T) {
	for _, body := range []string{"", "not json", `{"prompt":42}`, `["a"]`, `{"other":"x"}`} {
		gen := &fakeGenerator{fail: &formgen.Failure{Kind: formgen.KindInvalidRequest, Status: 400, Message: formgen.MsgPromptRequired}}
		rec := serveGenerate(t, gen, body, "Bearer tok")
		if gen.got.Prompt != "" {
			t.Fatalf("body %q: expected empty prompt, got %q", body, gen.got.Prompt)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status %d", body, rec.Code)
		}
	}
}

func TestGenerateFormFailureBody(t *testing.T) {
	formID := uuid.New()
	gen := &fakeGenerator{fail: &formgen.Failure{
		Kind:    formgen.KindPersistenceFailure,
		Status:  http.StatusInternalServerError,
		Message: "duplicate key",
		Details: map[string]any{"code": "23505"},
		FormID:  &formID,
	}}
	rec := serveGenerate(t, gen, `{"prompt":"x"}`, "Bearer tok")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", rec.Code)
	}
	want := map[string]any{
		"error":   "duplicate key",
		"code":    "persistence_failure",
		"details": map[string]any{"code": "23505"},
		"formId":  formID.String(),
	}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFormFailureWithoutDetails(t *testing.T) {
	gen := &fakeGenerator{fail: &formgen.Failure{
		Kind:    formgen.KindUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: formgen.MsgMissingToken,
	}}
	rec := serveGenerate(t, gen, `{"prompt":"x"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
	want := map[string]any{"error": "Missing access token.", "code": "unauthorized"}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFormLongPromptPassesThrough(t *testing.T) {
	long := strings.Repeat("a", 70<<10)
	gen := &fakeGenerator{res: formgen.Result{FormID: uuid.New()}}
	rec := serveGenerate(t, gen, `{"prompt":"`+long+`"}`, "Bearer tok")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if len(gen.got.Prompt) != len(long) {
		t.Fatalf("prompt truncated: got %d chars want %d", len(gen.got.Prompt), len(long))
	}
}

func TestGenerateFormOversizeBody(t *testing.T) {
	huge := strings.Repeat("a", maxPromptBody+1)
	gen := &fakeGenerator{}
	rec := serveGenerate(t, gen, `{"prompt":"`+huge+`"}`, "Bearer tok")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: %d", rec.Code)
	}
	want := map[string]any{"error": formgen.MsgPromptTooLong, "code": "invalid_request"}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if gen.calls != 0 {
		t.Fatalf("pipeline must not run for an oversize body")
	}
}
