package main

import "hostexport/cmd"

func main() {
	// Environment, configuration and logging are set up per command
	cmd.Execute()
}
