package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestRateLimiterBurstExhaustion: a burst of size n admits n requests from
// one client and rejects the next with 429.
func TestRateLimiterBurstExhaustion(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 2).RateLimitMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, want)
		}
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 1).RateLimitMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:2222"

	for i, req := range []*http.Request{first, second} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("client %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}
