package main

import "issuehub/cmd/cli/command"

func main() {
	command.Execute()
}
