// Package config loads evgate configuration from local and global YAML files
// with precedence rules. It is internal; CLI code maps flags and files into
// evaluation settings.
package config
