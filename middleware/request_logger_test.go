package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/logger"
)

func TestRequestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})
	router.GET("/server-error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		logLevel       string
	}{
		{"success request", "/test", http.StatusOK, "INFO"},
		{"client error", "/error", http.StatusBadRequest, "WARN"},
		{"server error", "/server-error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			req := httptest.NewRequest("GET", tt.path, nil)
			req.Header.Set("X-Request-ID", "req-"+tt.name)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			logOutput := buf.String()
			if !strings.Contains(logOutput, "request completed") {
				t.Error("Expected 'request completed' in log")
			}
			if !strings.Contains(logOutput, tt.path) {
				t.Errorf("Expected path '%s' in log", tt.path)
			}
			if !strings.Contains(logOutput, tt.logLevel) {
				t.Errorf("Expected log level '%s' in log", tt.logLevel)
			}
			if !strings.Contains(logOutput, "request_id=") {
				t.Error("Expected request id in log")
			}
		})
	}
}

func TestRequestLoggerWithQuery(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test?foo=bar&baz=qux", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "query") {
		t.Error("Expected query parameters in log")
	}
}

func TestRequestLoggerRecordsBytesErrorsAndOperator(t *testing.T) {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.UsernameKey, "qc")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.Use(RequestLogger())
	router.GET("/pdf", func(c *gin.Context) {
		c.String(http.StatusOK, "%PDF-1.3")
	})
	router.GET("/render-failed", func(c *gin.Context) {
		c.Error(errors.New("render: disk full"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render document"})
	})

	tests := []struct {
		name       string
		path       string
		wantBytes  float64
		wantErrors string
	}{
		{"body size", "/pdf", float64(len("%PDF-1.3")), ""},
		{"handler errors", "/render-failed", -1, "render: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse log line %q: %v", buf.String(), err)
			}

			if entry["username"] != "qc" {
				t.Errorf("Expected operator in log, got %v", entry["username"])
			}
			if tt.wantBytes >= 0 && entry["bytes"] != tt.wantBytes {
				t.Errorf("Expected bytes=%v, got %v", tt.wantBytes, entry["bytes"])
			}
			if tt.wantBytes < 0 && entry["bytes"] != float64(w.Body.Len()) {
				t.Errorf("Expected bytes=%d, got %v", w.Body.Len(), entry["bytes"])
			}

			got, ok := entry["errors"].(string)
			if tt.wantErrors == "" {
				if ok {
					t.Errorf("Expected no errors attribute, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantErrors) {
				t.Errorf("Expected errors to contain %q, got %q", tt.wantErrors, got)
			}
		})
	}
}
