package main

import "github.com/halcyon-labs/assistant-builder/cmd"

func main() {
	cmd.Execute()
}
