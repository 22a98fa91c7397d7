package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropforge/internal/config"

	"github.com/gin-gonic/gin"
)

func newMiddlewareEngine(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware)
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func TestRequestIDMiddlewareGeneratesAndEchoes(t *testing.T) {
	engine := newMiddlewareEngine(RequestIDMiddleware())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	engine.ServeHTTP(recorder, req)
	if recorder.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id header")
	}

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-fixed-1")
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("X-Request-ID"); got != "req-fixed-1" {
		t.Fatalf("expected caller request id echoed, got %s", got)
	}
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	engine := newMiddlewareEngine(CORSMiddleware(config.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowCredentials: true,
	}))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected origin allowed, got %q", got)
	}

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected unknown origin rejected, got %q", got)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	engine := newMiddlewareEngine(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"*"}}))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	engine.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
}

func TestAdminTokenMiddleware(t *testing.T) {
	engine := newMiddlewareEngine(AdminTokenMiddleware("secret-token"))

	// no header
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected envelope status 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); body == "pong" {
		t.Fatalf("expected request rejected without token")
	}

	// wrong token
	recorder = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	engine.ServeHTTP(recorder, req)
	if body := recorder.Body.String(); body == "pong" {
		t.Fatalf("expected request rejected with wrong token")
	}

	// right token
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	engine.ServeHTTP(recorder, req)
	if body := recorder.Body.String(); body != "pong" {
		t.Fatalf("expected request allowed, got %q", body)
	}
}

func TestAdminTokenMiddlewareEmptyTokenLocksOut(t *testing.T) {
	engine := newMiddlewareEngine(AdminTokenMiddleware(""))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer anything")
	engine.ServeHTTP(recorder, req)
	if body := recorder.Body.String(); body == "pong" {
		t.Fatalf("expected empty configured token to reject everything")
	}
}
