package main

import "stakepool/cmd"

func main() {
	cmd.Execute()
}
