package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"Bearerabc", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractBearer(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ExtractBearer(%q) = %q,%v want %q,%v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims JWTClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestJWTVerifier(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()
	v, err := NewJWTVerifier(JWTConfig{Secret: secret, Issuer: "formflow", Audience: "authenticated"})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	valid := JWTClaims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "formflow",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	id, err := v.Verify(context.Background(), signToken(t, secret, jwt.SigningMethodHS256, valid))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.ID != userID || id.Email != "a@example.com" {
		t.Fatalf("identity: %+v", id)
	}

	bad := map[string]string{}
	{
		c := valid
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		bad["expired"] = signToken(t, secret, jwt.SigningMethodHS256, c)
	}
	{
		c := valid
		c.Issuer = "someone-else"
		bad["issuer"] = signToken(t, secret, jwt.SigningMethodHS256, c)
	}
	{
		c := valid
		c.Subject = "not-a-uuid"
		bad["subject"] = signToken(t, secret, jwt.SigningMethodHS256, c)
	}
	{
		c := valid
		c.ExpiresAt = nil
		bad["no exp"] = signToken(t, secret, jwt.SigningMethodHS256, c)
	}
	bad["secret"] = signToken(t, "other-secret", jwt.SigningMethodHS256, valid)
	bad["alg"] = signToken(t, secret, jwt.SigningMethodHS512, valid)
	bad["garbage"] = "not.a.jwt"

	for name, tok := range bad {
		if _, err := v.Verify(context.Background(), tok); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := NewJWTVerifier(JWTConfig{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestRemoteVerifier(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon" {
			t.Errorf("missing apikey header")
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + userID.String() + `","email":"a@example.com"}`))
		case "Bearer empty":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	defer srv.Close()

	v, err := NewRemoteVerifier(srv.Client(), srv.URL+"/", "anon")
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	id, err := v.Verify(context.Background(), "good")
	if err != nil || id.ID != userID {
		t.Fatalf("Verify(good): %+v %v", id, err)
	}
	if _, err := v.Verify(context.Background(), "bad"); err == nil {
		t.Fatalf("Verify(bad): expected error")
	}
	if _, err := v.Verify(context.Background(), "empty"); err == nil {
		t.Fatalf("Verify(empty): expected error for missing user")
	}
}

type stubVerifier struct {
	id    *types.Identity
	err   error
	calls int32
}

func (s *stubVerifier) Verify(ctx context.Context, credential string) (*types.Identity, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.id, s.err
}

func TestAuthServiceVerifyIdentity(t *testing.T) {
	userID := uuid.New()
	ok := &stubVerifier{id: &types.Identity{ID: userID}}
	as := NewAuthService(logger.Nop(), ok)

	id, err := as.VerifyIdentity(context.Background(), "tok")
	if err != nil || id.ID != userID {
		t.Fatalf("VerifyIdentity: %+v %v", id, err)
	}

	if _, err := as.VerifyIdentity(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty credential: %v", err)
	}
	if ok.calls != 1 {
		t.Fatalf("verifier must not be called for an empty credential")
	}

	for name, v := range map[string]*stubVerifier{
		"error":       {err: errors.New("boom")},
		"nil":         {},
		"nil user id": {id: &types.Identity{}},
	} {
		if _, err := NewAuthService(logger.Nop(), v).VerifyIdentity(context.Background(), "tok"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestSetContextFromToken(t *testing.T) {
	userID := uuid.New()
	as := NewAuthService(logger.Nop(), &stubVerifier{id: &types.Identity{ID: userID, Email: "a@example.com"}})
	ctx, err := as.SetContextFromToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.Email != "a@example.com" {
		t.Fatalf("request data: %+v", rd)
	}
}
