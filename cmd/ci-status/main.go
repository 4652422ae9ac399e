package main

import "github.com/davarch/ci-status/cmd/ci-status/cli"

func main() {
	cli.Execute()
}
