package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
)

func loggingEngine(config LoggingConfig) (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogging(logging.NewLoggerFromCore(core), config))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/bad", func(c *gin.Context) { c.String(http.StatusBadRequest, "bad") })
	r.GET("/fail", func(c *gin.Context) { c.String(http.StatusInternalServerError, "fail") })
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(20 * time.Millisecond)
		c.String(http.StatusOK, "slow")
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, logs
}

func get(r http.Handler, target string) {
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	r, logs := loggingEngine(LoggingConfig{SlowThreshold: 10 * time.Millisecond})

	get(r, "/ok?x=1")
	get(r, "/bad")
	get(r, "/fail")
	get(r, "/slow")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, "HTTP request completed (slow)", entries[3].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok?x=1", fields["path"])
	assert.Equal(t, "/ok", fields["route"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRequestLogging_SkipPaths(t *testing.T) {
	r, logs := loggingEngine(DefaultLoggingConfig())
	get(r, "/healthz")
	assert.Equal(t, 0, logs.Len())
	get(r, "/ok")
	assert.Equal(t, 1, logs.Len())
}
