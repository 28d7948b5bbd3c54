package main

import "github.com/jbtool/jbt/cmd"

func main() {
	cmd.Execute()
}
