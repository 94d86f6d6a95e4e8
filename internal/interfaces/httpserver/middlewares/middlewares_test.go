package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain"
)

type fakeAuthenticator struct {
	enabled   bool
	principal domain.Principal
	err       error
}

func (f fakeAuthenticator) Enabled() bool { return f.enabled }

func (f fakeAuthenticator) Anonymous() domain.Principal {
	return domain.Principal{ID: "anonymous", AuthMethod: domain.AuthMethodAnonymous, Capabilities: []string{"reportes.generar"}}
}

func (f fakeAuthenticator) Authenticate(string) (domain.Principal, error) {
	return f.principal, f.err
}

func newEngine(authn Authenticator, capability string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), AuthMiddleware(authn, zerolog.Nop()))
	handlers := []gin.HandlerFunc{}
	if capability != "" {
		handlers = append(handlers, RequireCapability(capability))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "request_id": RequestIDFromContext(c)})
	})
	engine.GET("/x", handlers...)
	return engine
}

func TestAuthMiddleware_DisabledUsesAnonymous(t *testing.T) {
	engine := newEngine(fakeAuthenticator{}, "reportes.generar")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"anonymous"`)
	assert.Equal(t, "anonymous", w.Header().Get("X-Principal-Id"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	engine := newEngine(fakeAuthenticator{enabled: true, err: errors.New("bad")}, "")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestRequireCapability(t *testing.T) {
	user := domain.Principal{ID: "u1", AuthMethod: domain.AuthMethodJWT, Capabilities: []string{"reportes.generar"}}
	engine := newEngine(fakeAuthenticator{enabled: true, principal: user}, "reportes.exportar")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "reportes.exportar")

	user.Capabilities = append(user.Capabilities, "reportes.exportar")
	engine = newEngine(fakeAuthenticator{enabled: true, principal: user}, "reportes.exportar")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	engine := newEngine(fakeAuthenticator{}, "")

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), `"request_id":"abc-123"`)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
