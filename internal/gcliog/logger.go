// Package gcliog is the small structured-logging port; the review session
// is the component that accepts one. It mirrors the
// teacher's internal/adapter/observability.ReviewLogger: a thin adapter over
// the standard log package, never a no-op by default but always safe to
// leave nil.
package gcliog

import "log"

// Logger is accepted by any component that wants structured, leveled output.
// A nil Logger is valid everywhere it is accepted; callers check before use.
type Logger interface {
	LogInfo(message string, fields map[string]any)
	LogWarning(message string, fields map[string]any)
	LogError(message string, fields map[string]any)
}

// StandardLogger adapts the standard library logger to Logger.
type StandardLogger struct {
	prefix string
}

// New returns a Logger that writes through the standard log package,
// prefixing every line with the given component name.
func New(prefix string) *StandardLogger {
	return &StandardLogger{prefix: prefix}
}

func (l *StandardLogger) LogInfo(message string, fields map[string]any) {
	log.Printf("%s: info: %s %v", l.prefix, message, fields)
}

func (l *StandardLogger) LogWarning(message string, fields map[string]any) {
	log.Printf("%s: warning: %s %v", l.prefix, message, fields)
}

func (l *StandardLogger) LogError(message string, fields map[string]any) {
	log.Printf("%s: error: %s %v", l.prefix, message, fields)
}

// LogInfo is a nil-safe helper so callers needn't guard every call site.
func LogInfo(l Logger, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.LogInfo(message, fields)
}

// LogWarning is a nil-safe helper mirroring LogInfo.
func LogWarning(l Logger, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.LogWarning(message, fields)
}

// LogError is a nil-safe helper mirroring LogInfo.
func LogError(l Logger, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.LogError(message, fields)
}
