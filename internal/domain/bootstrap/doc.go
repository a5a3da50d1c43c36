// Package bootstrap contains the core types of the installer and launcher
// state machines: stages, the error taxonomy, exit statuses and the record
// written by a detached launch.
package bootstrap
