package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-results-api/internal/middleware"
	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopeFromContext returns the school and caller the request acts for.
func scopeFromContext(c *gin.Context) (schoolID string, claims *models.JWTClaims, err error) {
	claims = claimsFromContext(c)
	if claims == nil {
		return "", nil, appErrors.ErrUnauthorized
	}
	schoolID = c.GetString(middleware.ContextSchoolKey)
	if schoolID == "" {
		return "", nil, appErrors.Clone(appErrors.ErrForbidden, "request is not scoped to a school")
	}
	return schoolID, claims, nil
}

// expectedVersion reads the result version the client edited from If-Match. Both the weak ETag
// returned by reads (W/"3") and a bare number are accepted.
func expectedVersion(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "If-Match header with the result version is required")
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "If-Match must carry a result version")
	}
	return version, nil
}

func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
