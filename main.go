package main

import "github.com/jarvislab/jarvis/cmd"

func main() {
	cmd.Execute()
}
