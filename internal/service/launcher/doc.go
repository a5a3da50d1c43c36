// Package launcher starts the monitoring application.
//
// The foreground mode follows
//
//	Start → Launch → {Fail: Diagnose → Abort(1) | Pass: Idle → Exit(0)}
//
// and only diagnoses: it lists the candidate causes and never re-runs the
// installer. The detached mode starts the application without a console,
// checks the process is alive and records the launch under the log directory.
package launcher
