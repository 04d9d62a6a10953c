// Package evgate provides the command-line interface for evgate. It
// configures subcommands (normalize, evaluate, review, policy, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/evgate/cmd/evgate"
//	func main() { evgate.Execute() }
package evgate
