package main

import "focussync/internal/cli"

func main() {
	cli.Execute()
}
