package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func setupTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestOK(t *testing.T) {
	r := setupTestRouter()
	r.GET("/test", func(c *gin.Context) {
		OK(c, gin.H{"oldUrl": "/a/"})
	})
	w := serve(r)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Code != CodeSuccess {
		t.Errorf("Expected code %d, got %d", CodeSuccess, resp.Code)
	}
	if resp.Message != "success" {
		t.Errorf("Expected message 'success', got '%s'", resp.Message)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["oldUrl"] != "/a/" {
		t.Errorf("Unexpected data: %#v", resp.Data)
	}
}

func TestOKItems(t *testing.T) {
	r := setupTestRouter()
	r.GET("/test", func(c *gin.Context) {
		OKItems(c, []string{"a", "b"}, 12, 2, 2)
	})
	w := serve(r)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Items    []string `json:"items"`
			Total    int64    `json:"total"`
			Page     int      `json:"page"`
			PageSize int      `json:"pageSize"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Data.Items) != 2 || resp.Data.Items[0] != "a" {
		t.Errorf("Unexpected items: %v", resp.Data.Items)
	}
	if resp.Data.Total != 12 || resp.Data.Page != 2 || resp.Data.PageSize != 2 {
		t.Errorf("Unexpected pagination: %+v", resp.Data)
	}
}

func TestFailErr_HidesInternalError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := setupTestRouter(func(c *gin.Context) {
		c.Set(LoggerKey, logrus.NewEntry(logger).WithField("request_id", "r-1"))
	})
	r.GET("/test", func(c *gin.Context) {
		FailErr(c, ErrDatabaseError("failed to save redirect", errors.New("connection reset")))
	})
	w := serve(r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Code != CodeDatabaseError {
		t.Errorf("Expected code %d, got %d", CodeDatabaseError, resp.Code)
	}
	if resp.Message != "failed to save redirect" {
		t.Errorf("Expected message 'failed to save redirect', got '%s'", resp.Message)
	}
	if strings.Contains(w.Body.String(), "connection reset") {
		t.Error("Internal error must not be returned to the client")
	}

	if len(hook.Entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(hook.Entries))
	}
	entry := hook.LastEntry()
	if entry.Level != logrus.ErrorLevel {
		t.Errorf("Expected error level, got %s", entry.Level)
	}
	if entry.Data["request_id"] != "r-1" {
		t.Errorf("Expected request_id r-1, got %v", entry.Data["request_id"])
	}
}

func TestFailErr_WithoutInternalError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := setupTestRouter(func(c *gin.Context) { c.Set(LoggerKey, logrus.NewEntry(logger)) })
	r.GET("/test", func(c *gin.Context) {
		FailErr(c, ErrNotFound(""))
	})
	w := serve(r)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var resp Response
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Code != CodeNotFound {
		t.Errorf("Expected code %d, got %d", CodeNotFound, resp.Code)
	}
	if resp.Message != "resource not found" {
		t.Errorf("Expected message 'resource not found', got '%s'", resp.Message)
	}
	if resp.Data != nil {
		t.Error("Expected data to be nil for error response")
	}
	if len(hook.Entries) != 0 {
		t.Errorf("Expected no log entries, got %d", len(hook.Entries))
	}
}

func TestLogger_FallsBackToStandard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if Logger(c).Logger != logrus.StandardLogger() {
		t.Error("Expected the standard logger when none is set")
	}

	c.Set(LoggerKey, "not a logger")
	if Logger(c).Logger != logrus.StandardLogger() {
		t.Error("Expected the standard logger for a foreign value")
	}
}
