package main

import (
	"os"

	"github.com/vzahanych/average-weather/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
