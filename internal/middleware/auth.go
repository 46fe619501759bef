package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth"
)

type contextKey string

const ActorKey = contextKey("actor")

// ActorFromContext returns the authenticated subject, or "" for anonymous
// requests.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// TokenAuthenticator validates an opaque bearer token with an identity
// provider. An empty subject with a nil error means the token is invalid.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	identify func(next http.Handler) http.Handler
}

// NewJWTAuthMiddleware trusts HS256 tokens signed with secret and uses
// their sub claim as the actor.
func NewJWTAuthMiddleware(secret string, log *slog.Logger) *AuthMiddleware {
	ja := jwtauth.New("HS256", []byte(secret), nil)
	verifier := jwtauth.Verifier(ja)

	return &AuthMiddleware{identify: func(next http.Handler) http.Handler {
		return verifier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) {
					next.ServeHTTP(w, r)
					return
				}
				log.Debug("jwt rejected", slog.String("error", err.Error()))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if token == nil || token.Subject() == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), token.Subject())))
		}))
	}}
}

// NewSSOAuthMiddleware asks the SSO service about every bearer token.
func NewSSOAuthMiddleware(client TokenAuthenticator, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{identify: func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "malformed authorization header", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := client.Authenticate(r.Context(), token)
			if err != nil || actor == "" {
				if err != nil {
					log.Warn("sso token check failed", slog.String("error", err.Error()))
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}}
}

// Identify attaches the actor to the request context when a valid token is
// present and leaves the request anonymous when there is none.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return m.identify(next)
}
