package core

// Logger is any leveled logging service.
// Implementations may inspect args for context objects (logged-in user, wrapped errors).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
