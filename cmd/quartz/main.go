package main

import "quartz-skins/internal/cli"

func main() {
	cli.Execute()
}
