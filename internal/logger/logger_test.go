package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/daybook/internal/model"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    model.LogConfig
		want   string
		absent string
	}{
		{
			name: "json info",
			cfg:  model.LogConfig{Format: "json"},
			want: `"msg":"hello"`,
		},
		{
			name:   "console hides debug",
			cfg:    model.LogConfig{Format: "console"},
			want:   "hello",
			absent: "hidden",
		},
		{
			name: "console debug",
			cfg:  model.LogConfig{Format: "console", Debug: true},
			want: "hidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.cfg.File = filepath.Join(t.TempDir(), "logs", "daybook.log")
			log, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			log.Info("hello")
			log.Debug("hidden")
			_ = Sync(log)

			data, err := os.ReadFile(tt.cfg.File)
			if err != nil {
				t.Fatalf("reading log file: %v", err)
			}
			out := string(data)
			if !strings.Contains(out, tt.want) {
				t.Fatalf("log output %q does not contain %q", out, tt.want)
			}
			if tt.absent != "" && strings.Contains(out, tt.absent) {
				t.Fatalf("log output %q contains %q", out, tt.absent)
			}
		})
	}
}

func TestSyncNil(t *testing.T) {
	t.Parallel()
	if err := Sync(nil); err != nil {
		t.Fatalf("Sync(nil)=%v, want nil", err)
	}
}
