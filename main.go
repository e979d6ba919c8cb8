package main

import (
	"github.com/joho/godotenv"

	"github.com/dpshade/prompt-vault/internal/cli"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = ""

func main() {
	// PROMPTS_* settings may live in a local .env
	_ = godotenv.Load()

	if version == "" {
		version = cli.DefaultVersion
	}
	cli.Main(version)
}
