package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "info", false},
		{"debug", "debug", false},
		{"WARN", "warn", false},
		{"loud", "", true},
	}
	for _, tt := range tests {
		lvl, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && lvl.String() != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, lvl, tt.want)
		}
	}
}

func TestSetGet(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := Set(context.Background(), l)
	Get(ctx).Info().Str("interval", "7d").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) || !strings.Contains(out, `"interval":"7d"`) {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestGetWithoutLogger(t *testing.T) {
	// must not panic
	Get(context.Background()).Info().Msg("dropped")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(&buf, "warn")
	l.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.log")
	l, f, err := OpenFile(path, "info")
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	l.Info().Msg("written")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Errorf("expected log line in file, got %q", data)
	}
}
