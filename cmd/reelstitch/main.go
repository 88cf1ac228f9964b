package main

import "github.com/forPelevin/reelstitch/internal/cli"

func main() {
	cli.Main()
}
