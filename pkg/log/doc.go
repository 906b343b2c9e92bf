// Package log provides a logging abstraction for the calibration pipeline.
//
// This package defines a Logger interface that can be implemented by any
// logging library. A zerolog console adapter is provided for the CLI and a
// no-op logger for library use and testing.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewConsole(false)
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoop()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing logging
// infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
