package main

import (
	"os"

	"github.com/kh1ye/memory/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
