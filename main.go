package main

import "github.com/xvierd/timebox-cli/cmd"

func main() {
	cmd.Execute()
}
