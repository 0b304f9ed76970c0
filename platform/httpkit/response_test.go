package httpkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"compass_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestHandleErrorNilIsNotHandled(t *testing.T) {
	c, _ := testContext()
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}

func TestHandleErrorMapsDomainKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.Validation("bad input"), http.StatusBadRequest},
		{apperr.BadRequest("bad request"), http.StatusBadRequest},
		{apperr.Conflict("duplicate"), http.StatusConflict},
		{apperr.Internal("broken"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, rec := testContext()
		if !HandleError(c, tc.err) {
			t.Fatalf("%v: not handled", tc.err)
		}
		if rec.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

// A mid-transaction failure surfaces as a repository fmt.Errorf wrap, not a
// typed domain error. It must map to 500 so the caller knows a retry is safe,
// never to a client error.
func TestHandleErrorMapsUntypedErrorsToInternal(t *testing.T) {
	c, rec := testContext()

	err := fmt.Errorf("upsert submission: %w", errors.New("connection reset by peer"))
	if !HandleError(c, err) {
		t.Fatal("expected error to be handled")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
