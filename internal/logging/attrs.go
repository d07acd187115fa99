package logging

import (
	"log/slog"
)

// Attr lets callers build attributes without importing log/slog.
type Attr = slog.Attr

var (
	Bool     = slog.Bool
	Duration = slog.Duration
	Int      = slog.Int
	String   = slog.String
)

// Error records err under the "error" key, writing "<nil>" for a nil error so
// the key is always present.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// CorrelationID tags the lines belonging to one cache refresh.
func CorrelationID(id string) Attr { return slog.String(FieldCorrelationID, id) }

// EventType classifies a line for filtering.
func EventType(name string) Attr { return slog.String(FieldEventType, name) }

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

var warnDefaults = []struct{ key, value string }{
	{FieldErrorHint, "check logs for details"},
	{FieldImpact, "operation completed with warnings"},
}

// Args converts attrs to the variadic form slog's logging methods accept.
func Args(attrs ...Attr) []any {
	out := make([]any, len(attrs))
	for i, attr := range attrs {
		out[i] = attr
	}
	return out
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Fields missing from attrs get defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	present := make(map[string]bool, len(attrs))
	for _, attr := range attrs {
		present[attr.Key] = true
	}
	all := append(make([]Attr, 0, len(attrs)+1+len(warnDefaults)), attrs...)
	if !present[FieldEventType] {
		all = append(all, EventType(eventType))
	}
	for _, d := range warnDefaults {
		if !present[d.key] {
			all = append(all, String(d.key, d.value))
		}
	}
	logger.Warn(msg, Args(all...)...)
}
