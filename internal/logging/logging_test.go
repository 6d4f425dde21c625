package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantErr   bool
	}{
		{name: "default level", level: "", wantDebug: false},
		{name: "debug level", level: "debug", wantDebug: true},
		{name: "warn level", level: "warn", wantDebug: false},
		{name: "unknown level", level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(&buf, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			l.Debug("probe")
			if got := strings.Contains(buf.String(), "probe"); got != tt.wantDebug {
				t.Errorf("debug output present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestStandard(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	Standard(l).Print("hello from stdlib")

	if !strings.Contains(buf.String(), "hello from stdlib") {
		t.Errorf("output = %q, want message forwarded", buf.String())
	}
}
