package main

import "github.com/Carmen-Shannon/apiary/internal/cli"

func main() {
	cli.Execute()
}
