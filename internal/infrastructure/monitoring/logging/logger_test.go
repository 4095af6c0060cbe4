package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLogger_Formats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console", ""} {
		format := format
		t.Run("format="+format, func(t *testing.T) {
			t.Parallel()
			l, err := NewLogger(LogConfig{Level: LevelDebug, Format: format, OutputPaths: []string{"stdout"}})
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLogger_NilOutputPathsDefaultToStdout(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestZapLogger_LevelsWrite(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, lvl+" msg")
		assert.Contains(t, out, `"level":"`+lvl+`"`)
	}
}

func TestZapLogger_FieldsAreEncoded(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("build finished",
		Source("reac_xref.tsv"),
		SnapshotVersion("20260101T000000Z-abcd"),
		Int("conflicts", 2),
		Strings("namespaces", []string{"bigg.reaction", "rhea"}),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"source":"reac_xref.tsv"`)
	assert.Contains(t, out, `"snapshot_version":"20260101T000000Z-abcd"`)
	assert.Contains(t, out, `"conflicts":2`)
	assert.Contains(t, out, `"namespaces":["bigg.reaction","rhea"]`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Named("build").With(String("target", "metanetx")).Info("msg")

	out := buf.String()
	assert.Contains(t, out, `"target":"metanetx"`)
	assert.Contains(t, out, `"logger":"build"`)
}

func TestErr_Nil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must not replace the default")

	assert.Equal(t, l, OrDefault(nil))
	nop := NewNopLogger()
	assert.Equal(t, nop, OrDefault(nop))
}

//Personal.AI order the ending
