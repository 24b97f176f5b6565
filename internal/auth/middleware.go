package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easysks/easysks/internal/domain"
)

const (
	identityKey = "auth.identity"
	appUserKey  = "auth.appUser"
)

// UserStore provisions application users from verified identities.
type UserStore interface {
	GetOrCreate(ctx context.Context, provider, providerUserID string, email *string) (*domain.AppUser, error)
}

// Middleware authenticates requests and attaches the identity plus the
// provisioned application user to the gin context.
type Middleware struct {
	verifier *Verifier
	users    UserStore
	provider string
	log      *zap.Logger
}

// NewMiddleware builds an auth middleware. provider names the identity
// provider the tokens come from; it keys user provisioning.
func NewMiddleware(verifier *Verifier, users UserStore, provider string, log *zap.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		users:    users,
		provider: provider,
		log:      log.With(zap.String("middleware", "auth")),
	}
}

// RequireAuth rejects requests without a valid bearer token. Valid requests
// get the user provisioned on first sight.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearerToken(c)
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		identity, err := m.verifier.Verify(raw)
		if err != nil {
			m.log.Debug("token rejected", zap.Error(err))
			abortUnauthorized(c, "invalid token")
			return
		}

		var email *string
		if identity.Email != "" {
			email = &identity.Email
		}
		user, err := m.users.GetOrCreate(c.Request.Context(), m.provider, identity.SubjectID, email)
		if err != nil {
			m.log.Error("user provisioning failed",
				zap.String("subject", identity.SubjectID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "internal", "message": "could not resolve user"},
			})
			return
		}

		c.Set(identityKey, identity)
		c.Set(appUserKey, *user)
		c.Next()
	}
}

// Identity returns the verified token identity, or false when the request
// did not pass RequireAuth.
func Identity(c *gin.Context) (domain.AuthenticatedUser, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.AuthenticatedUser{}, false
	}
	identity, ok := v.(domain.AuthenticatedUser)
	return identity, ok
}

// CurrentUser returns the provisioned application user, or false when the
// request did not pass RequireAuth.
func CurrentUser(c *gin.Context) (domain.AppUser, bool) {
	v, ok := c.Get(appUserKey)
	if !ok {
		return domain.AppUser{}, false
	}
	user, ok := v.(domain.AppUser)
	return user, ok
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "unauthorized", "message": message},
	})
}
