package main

import "github.com/mselser95/polymarket-autopilot/cmd"

func main() {
	cmd.Execute()
}
