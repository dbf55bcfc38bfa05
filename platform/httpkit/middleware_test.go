package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"scanrate_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func TestRequestLoggerInjectsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(logger.New("test")))

	var gotID string
	engine.GET("/x", func(c *gin.Context) {
		gotID, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	engine.ServeHTTP(httptest.NewRecorder(), req)

	if gotID == "" {
		t.Fatal("expected a request ID in the downstream context")
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(logger.New("test")))

	seen := map[string]bool{}
	engine.GET("/x", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		seen[id] = true
	})

	for i := 0; i < 3; i++ {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct request IDs, got %d", len(seen))
	}
}

func TestIPRateLimiterRejectsAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	limiter := NewIPRateLimiter(1, 2, logger.New("test"))
	engine.GET("/x", limiter.RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests must pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %v", statuses)
	}
}
