package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces sensitive attribute values in log output.
const MaskValue = "***REDACTED***"

// maskedKeys are attribute keys whose values are always masked. Header
// names arrive lowercased.
var maskedKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"api_key":             true,
	"apikey":              true,
	"access_token":        true,
	"refresh_token":       true,
	"password":            true,
	"secret":              true,
	"session_id":          true,
}

// maskedKeywords mask any key containing them, catching spider-defined
// attribute names like "login_password" or "service_token".
var maskedKeywords = []string{"password", "secret", "token", "credential"}

// maskedValuePatterns mask values that look like credentials whatever
// their key is called.
var maskedValuePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Authorization header values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// AWS access keys
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	// PEM private keys
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// MaskHandler wraps an slog.Handler and masks sensitive attributes before
// they reach it. It works with any underlying handler format.
type MaskHandler struct {
	handler slog.Handler
}

// NewMaskHandler creates a MaskHandler wrapping handler. A nil handler
// wraps slog.Default().Handler().
func NewMaskHandler(handler slog.Handler) *MaskHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &MaskHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *MaskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and forwards it.
func (h *MaskHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks the attributes before adding them.
func (h *MaskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = maskAttr(a)
	}
	return &MaskHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a handler scoped to the group.
func (h *MaskHandler) WithGroup(name string) slog.Handler {
	return &MaskHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks one attribute, recursing into groups.
func maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, ga := range group {
			maskedGroup[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedGroup...)}
	}

	key := strings.ToLower(a.Key)
	if maskedKeys[key] || containsMaskedKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString && looksLikeCredential(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

func containsMaskedKeyword(key string) bool {
	for _, keyword := range maskedKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func looksLikeCredential(value string) bool {
	for _, pattern := range maskedValuePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// New creates a text logger writing to w. Verbose selects debug level,
// otherwise info.
func New(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewMaskHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSON creates a JSON logger writing to w, for log aggregation.
func NewJSON(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewMaskHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
