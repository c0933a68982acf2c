package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/testutil"
)

func TestRecordingLogger(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	logger.Info("dataset loaded", logging.Int("rows", 3))

	child := logger.Named("http").Named("access").With(logging.String("path", "/"))
	child.Warn("slow request", logging.String("path", "/api"))

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Level)
	assert.Empty(t, entries[0].Logger)

	e, ok := logger.Find("warn", "slow")
	require.True(t, ok)
	assert.Equal(t, "http.access", e.Logger)
	v, ok := e.Field("path")
	require.True(t, ok)
	assert.Equal(t, "/api", v)

	_, ok = logger.Find("error", "slow")
	assert.False(t, ok)

	logger.Reset()
	assert.Empty(t, logger.Entries())
}
