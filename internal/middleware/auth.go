package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"trail-backend/internal/models"
)

type contextKey string

const OwnerIDKey contextKey = "owner_id"

var ErrInvalidToken = errors.New("invalid token")

// JWTAuth issues and verifies anonymous owner tokens. An owner id is the only
// identity the service knows; courses and sessions hang off it.
type JWTAuth struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTAuth(secret string, ttl time.Duration) *JWTAuth {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &JWTAuth{Secret: []byte(secret), TTL: ttl}
}

// IssueOwnerToken creates an HS256 token carrying owner_id.
func (j *JWTAuth) IssueOwnerToken(ownerID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.TTL)
	claims := jwt.MapClaims{
		"owner_id": ownerID.String(),
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseOwnerToken verifies tokenStr and returns its owner id.
func (j *JWTAuth) ParseOwnerToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	ownerIDStr, ok := claims["owner_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing owner_id", ErrInvalidToken)
	}
	ownerID, err := uuid.Parse(ownerIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: owner_id format", ErrInvalidToken)
	}
	return ownerID, nil
}

// BearerToken extracts the token from an Authorization header, if present.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Middleware validates the bearer token and attaches owner_id to context
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}
		tokenStr, ok := BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		ownerID, err := j.ParseOwnerToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			}
			return
		}

		ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID extracts owner_id from request context
func GetOwnerID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(OwnerIDKey).(uuid.UUID)
	return id
}

// WithOwnerID returns ctx carrying ownerID. Handlers tests use it to skip the
// token round trip.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIError{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(RequestIDHeader),
	})
}
