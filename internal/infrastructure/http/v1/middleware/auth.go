package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
)

// HeaderAPIKey carries the mobile assistant's key.
const HeaderAPIKey = "X-Api-Key"

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Actor, error)
}

// KeyAuthenticator validates presented API keys.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, plain string) (*appctx.Actor, error)
}

// SessionAuth middleware validates Bearer JWT tokens and populates the actor.
func SessionAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// APIKeyAuth middleware validates X-Api-Key and populates the actor.
// The authenticated key carries its own permission set; route gates
// check it via RequirePermission.
func APIKeyAuth(keys KeyAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		plain := c.GetHeader(HeaderAPIKey)
		if plain == "" {
			abortUnauthorized(c, "missing api key")
			return
		}

		actor, err := keys.Authenticate(c.Request.Context(), plain)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewUnauthorized("invalid api key"))
			}
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

func setActor(c *gin.Context, actor *appctx.Actor) {
	ctx := appctx.WithActor(c.Request.Context(), actor)
	c.Request = c.Request.WithContext(ctx)

	// Store in gin context for easy access
	c.Set("actor_id", actor.ID)
	c.Set("actor_source", string(actor.Source))
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
