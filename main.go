package main

import (
	"os"

	"github.com/fulmenhq/cargo-override/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:]))
}
