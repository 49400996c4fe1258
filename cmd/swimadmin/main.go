package main

import "swim-admin/internal/cli"

func main() {
	cli.Execute()
}
