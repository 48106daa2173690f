package main

import "github.com/JustJay7/court-status-fetcher/internal/cli"

func main() {
	cli.Execute()
}
