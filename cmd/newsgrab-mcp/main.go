// Command newsgrab-mcp exposes the newsgrab API as MCP tools over stdio.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("NEWSGRAB_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("NEWSGRAB_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "NEWSGRAB_API_KEY is required")
		os.Exit(1)
	}

	s := newServer(newAPIClient(apiURL, apiKey, 2*time.Second))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
