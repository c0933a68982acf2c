package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "druglike.log")
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)
	l.Info("hello")
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)
	l.Info("annotated",
		String("rule", "ro5"),
		Int("rows", 3),
		Int64("bytes", 42),
		Float64("mw", 46.04),
		Bool("cached", true),
		Duration("took", time.Second),
		Strings("columns", []string{"MW"}),
		Err(errors.New("boom")),
		Any("extra", struct{ A int }{1}),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "ro5", ctx["rule"])
	assert.Equal(t, int64(3), ctx["rows"])
	assert.Equal(t, int64(42), ctx["bytes"])
	assert.Equal(t, 46.04, ctx["mw"])
	assert.Equal(t, true, ctx["cached"])
	assert.Equal(t, time.Second, ctx["took"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObserved(zapcore.WarnLevel)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)
	child := l.Named("http").With(String("request_id", "abc"))
	child.Info("served")
	l.Info("root")

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, "http", all[0].LoggerName)
	assert.Equal(t, "abc", all[0].ContextMap()["request_id"])
	assert.Empty(t, all[1].ContextMap())
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newObserved(zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l, _ := newObserved(zapcore.InfoLevel)
	assert.Same(t, l, OrNop(l))
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")
	l, err := NewLogger(LogConfig{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)
	child := l.Named("http").With(String("k", "v"))

	child.Info("dropped")
	require.True(t, SetLevel(l, "debug"))
	child.Debug("kept")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")

	assert.False(t, SetLevel(NewNopLogger(), "debug"))
	obs, _ := newObserved(zapcore.InfoLevel)
	assert.False(t, SetLevel(obs, "debug"))
}
