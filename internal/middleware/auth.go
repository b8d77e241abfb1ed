package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

const (
	ContextClaims = "claims"
	ContextEmail  = "email"
)

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// AuthMiddleware rejects requests without a bearer token (401) or with a token
// that fails verification (403). On success the claims and the email they
// carry are stored in the gin context.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) == 0 || !strings.EqualFold(parts[0], "Bearer") {
			Abort(c, apperror.Unauthorized("Unauthorized access"))
			return
		}

		var token string
		if len(parts) > 1 {
			token = parts[1]
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("token rejected")
			Abort(c, apperror.Forbidden(err))
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// Email returns the authenticated email set by AuthMiddleware.
func Email(c *gin.Context) (string, bool) {
	email := c.GetString(ContextEmail)
	return email, email != ""
}

// Abort stops the chain and writes err as {"message": ...} with its status.
func Abort(c *gin.Context, err *apperror.AppError) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Status(), gin.H{"message": err.Message})
}
