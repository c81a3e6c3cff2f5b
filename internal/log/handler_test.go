package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMaskHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		value  string
		masked bool
	}{
		{"authorization header", "authorization", "Bearer abc123", true},
		{"cookie header", "Cookie", "session=xyz", true},
		{"keyword in key", "login_password", "hunter2", true},
		{"token keyword", "service_token", "t-123", true},
		{"jwt value", "note", "eyJhbGc.eyJzdWI.sig", true},
		{"bearer value", "header", "Bearer something", true},
		{"plain url", "url", "https://example.com/page", false},
		{"plain status", "status", "200", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, false)
			logger.Info("fetch", slog.String(tt.key, tt.value))

			out := buf.String()
			if tt.masked {
				if strings.Contains(out, tt.value) {
					t.Errorf("sensitive value %q leaked: %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("mask marker missing: %s", out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("benign value %q missing: %s", tt.value, out)
			}
		})
	}
}

func TestMaskHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Info("request",
		slog.Group("headers",
			slog.String("authorization", "Basic dXNlcjpwYXNz"),
			slog.String("accept", "text/html"),
		),
	)

	out := buf.String()
	if strings.Contains(out, "dXNlcjpwYXNz") {
		t.Errorf("grouped credential leaked: %s", out)
	}
	if !strings.Contains(out, "text/html") {
		t.Errorf("benign grouped value missing: %s", out)
	}
}

func TestVerboseLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged at info level: %s", buf.String())
	}

	buf.Reset()
	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("debug not logged in verbose mode")
	}
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewJSON(&buf, false).Info("crawl", slog.String("api_key", "k-123"))

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Errorf("output not JSON: %s", out)
	}
	if strings.Contains(out, "k-123") {
		t.Errorf("api key leaked: %s", out)
	}
}
