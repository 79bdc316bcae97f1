package main

import (
	"context"
	"log"
	"os"

	"github.com/raysh454/safeecho/internal/commands"
)

func main() {
	if err := commands.New(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
