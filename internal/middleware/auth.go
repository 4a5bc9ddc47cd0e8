package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rada-learning/internal/models"
)

type contextKey string

const ViewerKey contextKey = "viewer"

// JWTAuth signs and verifies HS256 tokens shared with the PoliHub platform.
// An empty secret disables verification.
type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

func (j *JWTAuth) Enabled() bool {
	return len(j.Secret) > 0
}

// GenerateServiceToken creates a short-lived token identifying this service
// to the trust-score API.
func (j *JWTAuth) GenerateServiceToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": "xp:award",
		"exp":   time.Now().Add(5 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// GenerateViewerToken signs the viewer context the platform hands to clients.
func (j *JWTAuth) GenerateViewerToken(v models.Viewer, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     v.UserID,
		"role":        v.Role,
		"trust_score": v.TrustScore,
		"can_earn_xp": v.CanEarnXP,
		"exp":         time.Now().Add(ttl).Unix(),
		"iat":         time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTAuth) ParseViewer(tokenStr string) (models.Viewer, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		return models.Viewer{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Viewer{}, errors.New("invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return models.Viewer{}, errors.New("missing user_id claim")
	}
	v := models.Viewer{UserID: userID}
	v.Role, _ = claims["role"].(string)
	if score, ok := claims["trust_score"].(float64); ok {
		v.TrustScore = int(score)
	}
	v.CanEarnXP, _ = claims["can_earn_xp"].(bool)
	return v, nil
}

// Middleware attaches a verified Viewer to the context when a bearer token is
// present. Requests without one pass through as anonymous.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !j.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		// Must be Bearer format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		viewer, err := j.ParseViewer(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ViewerKey, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetViewer extracts the verified viewer from request context.
func GetViewer(ctx context.Context) (models.Viewer, bool) {
	v, ok := ctx.Value(ViewerKey).(models.Viewer)
	return v, ok
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
