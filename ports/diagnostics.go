package ports

// Diagnostics receives analyzer diagnostics. Skipped columns are reported at
// warn level, broken upstream contracts at error level.
type Diagnostics interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}
