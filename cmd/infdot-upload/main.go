package main

import "github.com/EgorLis/infdot-upload/internal/cli"

func main() {
	cli.Execute()
}
