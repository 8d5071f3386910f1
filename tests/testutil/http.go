package testutil

import (
	"bytes"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// PerformRequest sends a request through engine and returns the recorded response
func PerformRequest(engine *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// StatusOnly builds an engine with one route answering status
func StatusOnly(method, path string, status int) *gin.Engine {
	engine := gin.New()
	engine.Handle(method, path, func(c *gin.Context) {
		c.Status(status)
	})
	return engine
}
