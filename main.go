package main

import (
	cmd "github.com/danisworo/estate-scraper/internal/cli"
)

func main() {
	cmd.Execute()
}
