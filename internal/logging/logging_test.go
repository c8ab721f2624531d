package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"debug", false, logrus.DebugLevel},
		{"INFO", true, logrus.InfoLevel},
		{"warn", false, logrus.WarnLevel},
		{"error", false, logrus.ErrorLevel},
		{"", true, logrus.DebugLevel},
		{"", false, logrus.InfoLevel},
		{"loud", false, logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := New(tt.level, tt.verbose).GetLevel(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", false)
	log.WithField("order", 1).Info("traced")
	log.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "traced") || !strings.Contains(out, "order=1") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry should be filtered at info level")
	}
}
