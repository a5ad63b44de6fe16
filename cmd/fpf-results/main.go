package main

import "github.com/pfrederiksen/fpf-results/internal/cli"

func main() {
	cli.Execute()
}
