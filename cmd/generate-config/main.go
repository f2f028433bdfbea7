package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/folio/internal/config"
	"gopkg.in/yaml.v3"
)

const header = `# Folio configuration example
# Copy this file to config.yaml and customize as needed.
# Secrets (S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, GOOGLE_CLIENT_ID,
# SESSION_SECRET) are only read from the environment or a .env file.

`

func generate() ([]byte, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(header), yamlData...), nil
}

func main() {
	output, err := generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		os.Stdout.Write(output)
		return
	}

	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
