package main

import "github.com/aichat/aichat/cmd"

func main() {
	cmd.Execute()
}
