package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/auth"
	"github.com/hugh/go-grc/internal/grc"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	ClaimsKey    contextKey = "claims"
)

// TokenFromRequest looks for a bearer token, then the dashboard cookie, then
// the X-Auth-Token header.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return r.Header.Get("X-Auth-Token")
}

// Auth validates the request token and stores the caller identity in the
// context. revoker may be nil.
func Auth(tokens auth.TokenService, revoker auth.Revoker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := authenticate(r, tokens, revoker)
			if claims == nil {
				handleUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth stores the caller identity when the request carries a valid
// token and otherwise passes the request through as anonymous.
func OptionalAuth(tokens auth.TokenService, revoker auth.Revoker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := authenticate(r, tokens, revoker); claims != nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate returns the claims of a valid, unrevoked token or nil.
func authenticate(r *http.Request, tokens auth.TokenService, revoker auth.Revoker) *auth.Claims {
	token := TokenFromRequest(r)
	if token == "" {
		return nil
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return nil
	}

	if revoker != nil {
		revoked, err := revoker.IsRevoked(r.Context(), claims)
		if err != nil || revoked {
			return nil
		}
	}
	return claims
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// handleUnauthorized returns appropriate response based on request type
func handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	isWebRequest := strings.Contains(accept, "text/html") && !strings.HasPrefix(r.URL.Path, "/api/")

	if isWebRequest {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
}

func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// GetCaller returns the caller for service calls; anonymous when the request
// was not authenticated.
func GetCaller(ctx context.Context) grc.Caller {
	return grc.Caller{UserID: GetUserID(ctx)}
}
