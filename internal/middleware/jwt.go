package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
	"github.com/noah-isme/sma-results-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextSchoolKey is the gin context key storing the school every request is scoped to.
	ContextSchoolKey = "currentSchool"
	// SchoolHeader lets super administrators pick the school they act on.
	SchoolHeader = "X-School-ID"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token and records the caller's school.
func JWT(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		schoolID := claims.SchoolID
		if claims.Role == models.RoleSuperAdmin {
			if override := strings.TrimSpace(c.GetHeader(SchoolHeader)); override != "" {
				schoolID = override
			}
		}
		if schoolID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "request is not scoped to a school"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextSchoolKey, schoolID)
		c.Next()
	}
}
