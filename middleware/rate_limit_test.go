package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.Use(RateLimit(5, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}
}

func TestRateLimitPerOperator(t *testing.T) {
	token, _, err := GenerateToken("qc", "", testAuthConfig)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	other, _, _ := GenerateToken("inspector", "", testAuthConfig)

	router := gin.New()
	router.Use(AuthMiddleware(testAuthConfig))
	router.Use(RateLimit(2, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(tok string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	send(token)
	send(token)
	if code := send(token); code != http.StatusTooManyRequests {
		t.Errorf("Expected third request from qc to be limited, got %d", code)
	}
	if code := send(other); code != http.StatusOK {
		t.Errorf("Expected another operator on the same IP to pass, got %d", code)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("k") {
		t.Fatal("Expected first request to pass")
	}
	if limiter.Allow("k") {
		t.Fatal("Expected second request to be limited")
	}

	time.Sleep(20 * time.Millisecond)

	if !limiter.Allow("k") {
		t.Error("Expected request to pass after the window reset")
	}
}

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	if limiter == nil {
		t.Fatal("Expected non-nil limiter")
	}
	if limiter.rate != 100 {
		t.Errorf("Expected rate 100, got %d", limiter.rate)
	}
	if limiter.window != time.Minute {
		t.Errorf("Expected window 1 minute, got %v", limiter.window)
	}
}
