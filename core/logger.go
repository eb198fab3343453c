package core

// Logger is any service that can log diagnostics, optionally shipping
// them to an external error tracker.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Notifier surfaces transient, user-visible messages. Every failed
// operation must produce one; no failure is silent.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}
