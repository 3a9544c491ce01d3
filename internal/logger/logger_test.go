package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		level  logrus.Level
	}{
		{
			name: "file output",
			config: Config{
				Level:      "info",
				File:       filepath.Join(t.TempDir(), "icqbot.log"),
				MaxSize:    1,
				MaxBackups: 1,
				MaxAge:     1,
			},
			level: logrus.InfoLevel,
		},
		{
			name:   "stdout only",
			config: Config{Level: "debug", EnableStdout: true},
			level:  logrus.DebugLevel,
		},
		{
			name: "file and stdout",
			config: Config{
				Level:        "warn",
				File:         filepath.Join(t.TempDir(), "icqbot.log"),
				EnableStdout: true,
			},
			level: logrus.WarnLevel,
		},
		{
			name:   "invalid level defaults to info",
			config: Config{Level: "loud"},
			level:  logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.level, l.GetLevel())
		})
	}
}

func TestNew_CreatesLogDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	_, err := New(Config{Level: "info", File: filepath.Join(dir, "bot.log")})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNew_NoWritersDiscards(t *testing.T) {
	l, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.Equal(t, io.Discard, l.Out)
}

func TestNew_Formatter(t *testing.T) {
	l, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	l, err = New(Config{Level: "info"})
	require.NoError(t, err)
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestInitLogger_InstallsGlobal(t *testing.T) {
	require.NoError(t, InitLogger(Config{Level: "error"}))
	assert.Equal(t, logrus.ErrorLevel, GetLogger().GetLevel())
	assert.Same(t, GetLogger(), GetLogger())
}

func TestWithFields_WritesStructuredOutput(t *testing.T) {
	require.NoError(t, InitLogger(Config{Level: "info"}))

	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(logrus.Fields{"event_id": 42, "event_type": "newMessage"}).Info("event-dispatched")
	WithField("chat_id", "alice@chat.agent").Warn("handler-panic-recovered")
	Debug("hidden")
	Warn("retrying-soon")
	Error("fetch-failed")

	out := buf.String()
	assert.Contains(t, out, "event-dispatched")
	assert.Contains(t, out, `"event_id":42`)
	assert.Contains(t, out, "alice@chat.agent")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warning"`)
	assert.Contains(t, out, `"msg":"fetch-failed"`)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("short"))
	assert.Equal(t, "001.123***6789", MaskSecret("001.1234567890.0123456789"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello"))

	long := string(bytes.Repeat([]byte("a"), 200))
	got := Truncate(long)
	assert.Len(t, got, 123)
	assert.True(t, len(got) < len(long))
}
