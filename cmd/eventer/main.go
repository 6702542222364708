package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := RunWithArgs(version, nil, os.Stdout); err != nil {
		os.Exit(1)
	}
}
