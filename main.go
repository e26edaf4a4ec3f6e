package main

import "github.com/chriserin/strparse/cmd"

func main() {
	cmd.Execute()
}
