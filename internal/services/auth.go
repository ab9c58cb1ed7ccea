package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

var ErrUnauthorized = errors.New("unauthorized")

// IdentityVerifier exchanges a bearer credential for a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*types.Identity, error)
}

type AuthService interface {
	ExtractBearer(header string) (string, bool)
	VerifyIdentity(ctx context.Context, credential string) (*types.Identity, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log      *logger.Logger
	verifier IdentityVerifier
}

func NewAuthService(log *logger.Logger, verifier IdentityVerifier) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		verifier: verifier,
	}
}

// ExtractBearer returns the credential of a "Bearer <token>" header. The
// scheme is matched case-insensitively.
func (as *authService) ExtractBearer(header string) (string, bool) {
	return ExtractBearer(header)
}

func ExtractBearer(header string) (string, bool) {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func (as *authService) VerifyIdentity(ctx context.Context, credential string) (*types.Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrUnauthorized
	}
	if as.verifier == nil {
		return nil, fmt.Errorf("%w: no identity verifier configured", ErrUnauthorized)
	}
	id, err := as.verifier.Verify(ctx, credential)
	if err != nil {
		as.log.Debug("Identity verification failed", "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if id == nil || id.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: no identity", ErrUnauthorized)
	}
	return id, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	id, err := as.VerifyIdentity(ctx, tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: id.ID, Email: id.Email}), nil
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

type JWTClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier verifies HS256 access tokens locally. The subject must be a UUID.
func NewJWTVerifier(cfg JWTConfig) (IdentityVerifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &jwtVerifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

func (v *jwtVerifier) Verify(ctx context.Context, credential string) (*types.Identity, error) {
	parsed, err := v.parser.ParseWithClaims(credential, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return &types.Identity{ID: userID, Email: claims.Email}, nil
}

type remoteVerifier struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
}

// NewRemoteVerifier asks the hosted auth service who owns the credential
// (GET {baseURL}/auth/v1/user).
func NewRemoteVerifier(httpClient *http.Client, baseURL, anonKey string) (IdentityVerifier, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("AUTH_URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &remoteVerifier{httpClient: httpClient, baseURL: baseURL, anonKey: anonKey}, nil
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *remoteVerifier) Verify(ctx context.Context, credential string) (*types.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	if v.anonKey != "" {
		req.Header.Set("apikey", v.anonKey)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth status %d", resp.StatusCode)
	}
	var u remoteUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("auth decode: %w", err)
	}
	id, err := uuid.Parse(strings.TrimSpace(u.ID))
	if err != nil {
		return nil, fmt.Errorf("auth returned no user")
	}
	return &types.Identity{ID: id, Email: u.Email}, nil
}
