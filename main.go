package main

import "github.com/mukhammadalimk/natours/cli"

func main() {
	cli.Execute()
}
