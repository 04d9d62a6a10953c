package main

import "github.com/redactyl/evgate/cmd/evgate"

func main() { evgate.Execute() }
