package main

import "github.com/kamal-hamza/vpnadm/cmd"

func main() {
	cmd.Execute()
}
