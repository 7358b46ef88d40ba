package main

import "github.com/tanq16/clipshr/cmd"

func main() {
	cmd.Execute()
}
