package main

import (
	"context"
	"log"

	"gourmet-guide/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
