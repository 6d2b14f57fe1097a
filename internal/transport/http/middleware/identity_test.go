package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"finbro-chat/internal/transport/http/middleware"
)

func newIdentityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", middleware.RequireUserID(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint(middleware.ContextUserIDKey)})
	})
	return r
}

func TestRequireUserIDMissingHeader(t *testing.T) {
	r := newIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireUserIDInvalidHeader(t *testing.T) {
	r := newIdentityRouter()

	for _, raw := range []string{"abc", "0", "-1", "  "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set(middleware.UserIDHeader, raw)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", raw, w.Code)
		}
	}
}

func TestRequireUserIDValidHeader(t *testing.T) {
	r := newIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(middleware.UserIDHeader, "17")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUserIDFromHeaderOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := middleware.UserIDFromHeader(c); ok {
		t.Fatal("expected no identity without the header")
	}

	c.Request.Header.Set(middleware.UserIDHeader, " 9 ")
	userID, ok := middleware.UserIDFromHeader(c)
	if !ok || userID != 9 {
		t.Fatalf("expected identity 9, got %d ok=%v", userID, ok)
	}
}
