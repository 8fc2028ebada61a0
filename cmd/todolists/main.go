package main

import "todolists/internal/cli"

func main() {
	cli.Execute()
}
