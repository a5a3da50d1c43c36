// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Info, InfoKV, ErrorKV, etc.).
//
// Operator-facing diagnostics are not logged; they are printed by the console package.
package logger
