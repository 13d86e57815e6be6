package main

import "github.com/fortuna/courtside/internal/cli"

func main() {
	cli.Execute()
}
