package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"compass_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func serveWithRequestID(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	var seen any
	router.GET("/", func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.RequestIDKey)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, seen
}

// The id must reach the request context, not just the gin context, so that
// services tagging log lines through the plain context.Context can find it.
func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rec, seen := serveWithRequestID(t, req)

	if got, _ := seen.(string); got != "req-123" {
		t.Fatalf("request context id = %v, want req-123", seen)
	}
	if rec.Header().Get("X-Request-ID") != "req-123" {
		t.Fatalf("response header = %q, want the inbound id echoed", rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec, seen := serveWithRequestID(t, req)

	got, _ := seen.(string)
	if got == "" {
		t.Fatal("request context must carry a generated id")
	}
	if rec.Header().Get("X-Request-ID") != got {
		t.Fatalf("header id %q differs from context id %q", rec.Header().Get("X-Request-ID"), got)
	}
}
