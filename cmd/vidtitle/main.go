package main

import "github.com/devbush/vidtitle/internal/adapters/cli"

func main() {
	cli.Execute()
}
