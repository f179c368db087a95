package main

import "github.com/deathroll-xyz/deathroll-go/internal/cli"

func main() {
	cli.Execute()
}
