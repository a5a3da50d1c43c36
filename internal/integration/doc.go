// Package integration runs the installer and launcher end to end against a
// fake interpreter through the real process runner.
package integration
