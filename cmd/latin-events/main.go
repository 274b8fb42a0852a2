package main

import "github.com/aendu/latin-events/internal/cli"

func main() {
	cli.Execute()
}
