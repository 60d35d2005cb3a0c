package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger returns a logger that writes JSON entries to a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/odorscape/log.json"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"info", LevelInfo},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Debug("debug msg", Int("rows", 3))
	l.Info("info msg", Float64("auroc", 0.75))
	l.Warn("warn msg", Bool("skipped", true))
	l.Error("error msg", Err(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"rows":3`)
	assert.Contains(t, out, `"auroc":0.75`)
	assert.Contains(t, out, `"skipped":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(RunID("run-1")).Named("loader").Info("loaded")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"logger":"loader"`)
}

func TestLogStage(t *testing.T) {
	l, buf := newTestLogger(t)
	LogStage(l, "similarity", time.Now().Add(-time.Second), Int("molecules", 10))

	out := buf.String()
	assert.Contains(t, out, "stage completed")
	assert.Contains(t, out, `"stage":"similarity"`)
	assert.Contains(t, out, `"molecules":10`)
	assert.Contains(t, out, `"elapsed":`)
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}
