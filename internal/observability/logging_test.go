package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/servicedesk/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	app := config.AppConfig{Name: "servicedesk", Env: "production", Version: "test"}
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		logger, err := NewLogger(app, config.LoggerConfig{Level: tc.level})
		if err != nil {
			t.Fatalf("level %q: %v", tc.level, err)
		}
		if !logger.Core().Enabled(tc.want) {
			t.Fatalf("level %q: expected %s enabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
			t.Fatalf("level %q: expected %s disabled", tc.level, tc.want-1)
		}
	}
}
