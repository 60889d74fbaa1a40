package main

import "github.com/sellence/leadfinder/cmd"

func main() {
	cmd.Execute()
}
