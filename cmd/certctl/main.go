package main

import "github.com/certportal/internal/cli"

func main() {
	cli.Execute()
}
