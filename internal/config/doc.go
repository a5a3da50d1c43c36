// Package config defines the bootstrap settings shared by the installer and
// the launcher and provides helpers to load, validate and save them in YAML.
//
// Every field has a built-in default, so a missing settings file is not an error
// unless its path was requested explicitly.
package config
