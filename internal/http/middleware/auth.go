package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tryonme/outfit-server/internal/models"
)

// UserIDKey is the gin context key the auth middleware stores the caller's
// user id under.
const UserIDKey = "user_id"

// ErrNoSession is returned when the request carries no resolvable identity.
var ErrNoSession = errors.New("no session")

// AuthProvider resolves the caller's identity. Session management itself
// (OAuth, token issuance) lives outside this service; handlers only ever need
// the current user id.
type AuthProvider interface {
	CurrentUserID(ctx context.Context, r *http.Request) (string, error)
}

// RedisAuthProvider resolves bearer tokens against session entries written by
// the identity service (tryon:session:<token> -> user id).
type RedisAuthProvider struct {
	client *redis.Client
}

func NewRedisAuthProvider(client *redis.Client) *RedisAuthProvider {
	return &RedisAuthProvider{client: client}
}

func (p *RedisAuthProvider) CurrentUserID(ctx context.Context, r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", ErrNoSession
	}
	if p.client == nil {
		return "", ErrNoSession
	}

	userID, err := p.client.Get(ctx, "tryon:session:"+token).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireAuth rejects requests without a resolvable user id.
func RequireAuth(provider AuthProvider) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := provider.CurrentUserID(ctx.Request.Context(), ctx.Request)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Error:   "Unauthorized",
			})
			return
		}
		ctx.Set(UserIDKey, userID)
		ctx.Next()
	}
}

// OptionalAuth resolves the user id when present but lets anonymous requests
// through. The generation pipeline serves anonymous users too.
func OptionalAuth(provider AuthProvider) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if userID, err := provider.CurrentUserID(ctx.Request.Context(), ctx.Request); err == nil {
			ctx.Set(UserIDKey, userID)
		}
		ctx.Next()
	}
}
