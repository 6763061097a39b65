package main

import (
	"os"

	"github.com/gnolang/dupl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
