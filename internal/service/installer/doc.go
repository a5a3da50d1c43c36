// Package installer implements the dependency installer:
//
//	Start → RuntimeCheck → {Fail: Abort(1) | Pass: DependencyInstall → {Fail: Abort(1) | Pass: Success(0)}}
//
// Every failure prints a diagnostic with a remediation hint and waits for the
// operator before returning. Nothing is retried and nothing is rolled back.
package installer
