package main

import "github.com/fakeyudi/ccprune/cmd"

func main() {
	cmd.Execute()
}
