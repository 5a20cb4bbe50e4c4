package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/athletconnect/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "AthletConnect server URL (e.g. https://athletconnect.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("athletconnect-mcp", Version)
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: athletconnect-mcp -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("athletconnect-mcp starting", "version", Version, "server", *serverURL)

	client := mcp.NewHTTPClient(*serverURL)
	if err := server.ServeStdio(mcp.New(client, client, Version, log)); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}
