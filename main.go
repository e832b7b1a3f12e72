package main

import "github.com/frankcappelle/xterm1/cmd"

func main() {
	cmd.Execute()
}
