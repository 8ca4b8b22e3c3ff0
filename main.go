package main

import "github.com/devicelab-dev/uiauto/pkg/cli"

func main() {
	cli.Execute()
}
