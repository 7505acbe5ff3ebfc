package main

import (
	"os"

	"github.com/joho/godotenv"

	"ragpipe/cmd/ragpipe/commands"
)

func main() {
	_ = godotenv.Load()
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
