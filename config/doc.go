// Package config loads and persists the input stack configuration.
//
// Configuration lives in a single TOML file with sections for the device
// monitor, the stream multiplexer, and logging. Loading a path that does
// not exist writes the defaults there first, so a fresh install always
// leaves an editable file behind.
package config
