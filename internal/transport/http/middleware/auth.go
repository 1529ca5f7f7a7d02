package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"devfolio/internal/httputil"
	"devfolio/internal/model"
	"devfolio/internal/service"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated actor's local user id
	UserIDKey contextKey = "user_id"
)

// AuthMiddleware validates the identity provider's JWT and resolves the
// asserted principal to a local user, provisioning the record on first sight.
// Handlers always receive an explicit local user id via the request context,
// never ambient identity state.
func AuthMiddleware(jwtSecret string, identity *service.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := resolveActor(w, r, jwtSecret, identity, true)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves the actor when a valid token is present and
// lets the request through anonymously otherwise. Read paths use this so that
// unauthenticated viewers see public data with interaction flags set to false.
func OptionalAuthMiddleware(jwtSecret string, identity *service.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := resolveActor(w, r, jwtSecret, identity, false)
			if ok && userID != "" {
				ctx := context.WithValue(r.Context(), UserIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveActor extracts and validates the bearer token, then resolves the
// principal to a local user id. When required is false, any failure yields
// ("", true) so the caller proceeds anonymously; when required is true, a
// failure writes the error response and yields ("", false).
func resolveActor(w http.ResponseWriter, r *http.Request, jwtSecret string, identity *service.IdentityService, required bool) (string, bool) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		if required {
			httputil.WriteUnauthorized(w, "Missing authentication token")
			return "", false
		}
		return "", true
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		if required {
			httputil.WriteUnauthorized(w, "Invalid authentication token")
			return "", false
		}
		return "", true
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		if required {
			httputil.WriteUnauthorized(w, "Invalid token claims")
			return "", false
		}
		return "", true
	}

	principal, ok := principalFromClaims(claims)
	if !ok {
		if required {
			httputil.WriteUnauthorized(w, "Invalid token claims")
			return "", false
		}
		return "", true
	}

	user, err := identity.Sync(r.Context(), principal)
	if err != nil {
		log.Printf("[AuthMiddleware] Failed to resolve principal %s: %v", principal.ExternalID, err)
		if required {
			httputil.WriteUnauthorized(w, "Unable to resolve user")
			return "", false
		}
		return "", true
	}

	return user.ID, true
}

// bearerToken pulls the token from the Authorization header, falling back to
// the access_token cookie for browser clients.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// principalFromClaims builds the provider principal from standard claims.
// Only the subject is mandatory; profile claims are best-effort.
func principalFromClaims(claims jwt.MapClaims) (model.Principal, bool) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return model.Principal{}, false
	}

	p := model.Principal{ExternalID: sub}
	if name, ok := claims["name"].(string); ok {
		p.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		p.Username = &username
	}
	if picture, ok := claims["picture"].(string); ok && picture != "" {
		p.AvatarURL = &picture
	}
	return p, true
}

// GetUserIDFromContext extracts the local user id from the request context.
// Returns the id and true if an authenticated actor is present.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
