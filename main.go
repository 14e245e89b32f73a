package main

import "github.com/hathordice/hathor-dice/cmd"

func main() {
	cmd.Execute()
}
