package main

import (
	"sjsage522/eventscraper/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cmd.Execute()
}
