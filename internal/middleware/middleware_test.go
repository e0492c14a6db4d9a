package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type recordingObserver struct {
	method string
	path   string
	status int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.method, r.path, r.status = method, path, status
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/results/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSchoolKey))
	})
	return router
}

func serve(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/results/r1", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	router := newRouter(JWT(&stubValidator{}))
	rec := serve(router, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsNonBearerScheme(t *testing.T) {
	router := newRouter(JWT(&stubValidator{}))
	rec := serve(router, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTPropagatesValidationError(t *testing.T) {
	v := &stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	router := newRouter(JWT(v))
	rec := serve(router, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "bad", v.token)
}

func TestJWTScopesRequestToClaimSchool(t *testing.T) {
	v := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, SchoolID: "school-1"}}
	router := newRouter(JWT(v))
	rec := serve(router, map[string]string{"Authorization": "Bearer ok", SchoolHeader: "school-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "school-1", rec.Body.String())
}

func TestJWTSuperAdminMayPickSchool(t *testing.T) {
	v := &stubValidator{claims: &models.JWTClaims{UserID: "root", Role: models.RoleSuperAdmin}}
	router := newRouter(JWT(v))

	rec := serve(router, map[string]string{"Authorization": "Bearer ok", SchoolHeader: "school-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "school-2", rec.Body.String())

	rec = serve(router, map[string]string{"Authorization": "Bearer ok"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		status int
	}{
		{"allowed role", models.RoleAdmin, http.StatusOK},
		{"super admin always allowed", models.RoleSuperAdmin, http.StatusOK},
		{"other role rejected", models.RoleParent, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: tc.role, SchoolID: "school-1"}}
			router := newRouter(JWT(v), RequireRoles(models.RoleAdmin, models.RoleTeacher))
			rec := serve(router, map[string]string{"Authorization": "Bearer ok", SchoolHeader: "school-1"})
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	router := newRouter(RequireRoles(models.RoleAdmin))
	rec := serve(router, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}
	router := newRouter(Metrics(observer))

	serve(router, nil)
	assert.Equal(t, http.MethodGet, observer.method)
	assert.Equal(t, "/results/:id", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "unmatched", observer.path)
	assert.Equal(t, http.StatusNotFound, observer.status)
}
