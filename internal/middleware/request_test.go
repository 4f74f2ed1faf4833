package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wfunc/slot-replay/internal/logger"
)

func newEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	logger.SetLogger(l, map[string]*zap.Logger{"api": l.Named("api")})

	r := gin.New()
	r.Use(Recovery(), RequestID(), AccessLog())
	r.GET("/ok", func(c *gin.Context) {
		id, ok := GetRequestID(c)
		assert.True(t, ok)
		c.String(http.StatusOK, id)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r, logs
}

func TestRequestID(t *testing.T) {
	r, logs := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())

	entries := logs.FilterMessage("request").All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, "abc", entries[1].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	r, logs := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
