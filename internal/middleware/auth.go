package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/rachadinha/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
	// GuestKey is the context key for a participant who joined by invite.
	GuestKey contextKey = "guest"
)

// Guest is a participant authenticated by a guest token. Guests may only read
// the session they joined.
type Guest struct {
	SessionID     string
	ParticipantID string
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns a context carrying the given user identity.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// WithGuest returns a context carrying a guest participant identity.
func WithGuest(ctx context.Context, sessionID, participantID string) context.Context {
	return context.WithValue(ctx, GuestKey, Guest{SessionID: sessionID, ParticipantID: participantID})
}

// GetGuest extracts the guest identity from the context, if any.
func GetGuest(ctx context.Context) (Guest, bool) {
	guest, ok := ctx.Value(GuestKey).(Guest)
	return guest, ok
}

// withClaims stores the user or guest identity of validated claims.
func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	if claims.IsGuest() {
		return WithGuest(ctx, claims.SessionID, claims.ParticipantID)
	}
	return WithUser(ctx, claims.UserID, claims.Email)
}

// Authenticate validates the bearer token of an Authorization header value.
func Authenticate(jwtManager *auth.JWTManager, authHeader string) (*auth.Claims, error) {
	if authHeader == "" {
		return nil, auth.ErrMissingToken
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	return jwtManager.Validate(parts[1])
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and adds
// the user or guest identity to the request context. Procedures listed in
// public are also served without a valid token.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, procedure := range public {
		open[procedure] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			claims, err := Authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				if open[req.Spec().Procedure] {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			// Call the next handler with enriched context
			return next(withClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication. Register and Login run behind it.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			// Invalid tokens are ignored here
			if claims, err := Authenticate(jwtManager, req.Header().Get("Authorization")); err == nil {
				ctx = withClaims(ctx, claims)
			}
			return next(ctx, req)
		}
	}
}

// RequireAuthHTTP is the plain HTTP counterpart of RequireAuth.
func RequireAuthHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := Authenticate(jwtManager, r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}
