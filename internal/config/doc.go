// Package config defines the settings shared by the daemon and the CLI and
// provides helpers to load, validate and save them in YAML format.
//
// Load reads the YAML file with cleanenv, so every field can also be set
// through an ALARM_CLOCK_* environment variable; Save writes YAML back.
package config
