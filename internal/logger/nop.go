package logger

// NopLogger is a logger that does nothing. Use it in tests or when logging
// should be disabled.
type NopLogger struct{}

// NewNop creates a new no-op logger instance.
func NewNop() Logger {
	return &NopLogger{}
}

// Debug does nothing.
func (*NopLogger) Debug(string, ...Field) {}

// Info does nothing.
func (*NopLogger) Info(string, ...Field) {}

// Warn does nothing.
func (*NopLogger) Warn(string, ...Field) {}

// Error does nothing.
func (*NopLogger) Error(string, ...Field) {}

// Fatal does nothing.
func (*NopLogger) Fatal(string, ...Field) {}

// With returns the same no-op logger.
func (l *NopLogger) With(...Field) Logger {
	return l
}

// Sync does nothing and returns nil.
func (*NopLogger) Sync() error {
	return nil
}
