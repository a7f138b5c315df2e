package main

import "github.com/marcus/dispatch/cmd/dispatch/commands"

func main() {
	commands.Execute()
}
