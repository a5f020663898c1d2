package main

import "github.com/solho/setlist/internal/cli"

func main() {
	cli.Execute()
}
