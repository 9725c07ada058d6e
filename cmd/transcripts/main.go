package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nhle/transcript-insights/internal/cli"
)

var version = "dev"

func main() {
	// A missing .env is the common case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env: %v", err)
	}

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
