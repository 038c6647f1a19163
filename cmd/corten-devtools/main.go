package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
   ____          _              ____             _____           _
  / ___|___  _ __| |_ ___ _ __  |  _ \  _____   _|_   _|__   ___ | |___
 | |   / _ \| '__| __/ _ \ '_ \ | | | |/ _ \ \ / / | |/ _ \ / _ \| / __|
 | |__| (_) | |  | ||  __/ | | || |_| |  __/\ V /  | | (_) | (_) | \__ \
  \____\___/|_|   \__\___|_| |_||____/ \___| \_/   |_|\___/ \___/|_|___/
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "corten-devtools",
		Short: "A Chrome DevTools Protocol server",
		Long: `corten-devtools serves the Chrome DevTools Protocol over JSON-RPC/WebSocket.

It speaks the same wire protocol a real browser's remote-debugging port
does: domain.method requests, typed error responses, and per-domain
event streams, against a mock DOM/CSS bridge and in-memory tracking for
the Network, Profiler, and HeapProfiler domains.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(banner)
}

func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
