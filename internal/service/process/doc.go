// Package process is the only place that spawns subprocesses.
//
// Runner turns a Command into an Outcome whose exit status is the single
// signal the installer and launcher branch on. Keeping it behind an interface
// lets the state machines run in tests without real processes; see processtest.
package process
