package middleware

import (
	"github.com/fekuna/omnipos-retail-service/internal/auth"
	authHandler "github.com/fekuna/omnipos-retail-service/internal/auth/handler"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/gin-gonic/gin"
)

// RequireSession rejects requests without an active session and stores the user on the request context.
func RequireSession(uc auth.UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := uc.Authenticate(c.Request.Context(), authHandler.BearerToken(c))
		if err != nil {
			respond.Error(c, err)
			return
		}

		ctx := auth.WithSession(c.Request.Context(), claims.UserID, claims.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
