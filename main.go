package main

import "github.com/nextlevelbuilder/hostmcp/cmd"

func main() {
	cmd.Execute()
}
