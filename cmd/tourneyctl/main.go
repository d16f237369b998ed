package main

import "github.com/mcoot/tourneybot/internal/cli"

func main() {
	cli.Execute()
}
