// Package console is the operator channel: confirmations, diagnostics with
// remediation hints and the final "press Enter" pause.
package console
