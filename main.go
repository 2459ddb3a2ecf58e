package main

import "github.com/robokit/simlink/cmd"

func main() {
	cmd.Execute()
}
