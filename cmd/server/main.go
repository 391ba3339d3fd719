package main

import (
	"log"

	"github.com/snapquiz/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
