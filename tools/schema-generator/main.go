package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/omnote/core/session"
)

func main() {
	schemaBytes, err := session.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	outputPath := filepath.Join("session", "state.schema.json")
	if err := os.WriteFile(outputPath, schemaBytes, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated session schema at %s", outputPath)
}
