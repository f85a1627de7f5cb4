package main

import "pressroom/cli"

func main() {
	cli.Execute()
}
