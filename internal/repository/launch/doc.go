// Package launch persists the record of the last detached application start.
package launch
