// Package environment isolates the process-wide state the bootstrap depends
// on but does not own: the interpreter on PATH, the installed packages and the
// process table.
package environment
