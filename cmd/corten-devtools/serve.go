package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/config"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/facade"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/browser"
)

// Exit codes, per the configuration-and-lifecycle contract: 0 is a clean
// shutdown, 1 is a listener bind failure, 2 is a configuration error
// caught before the listener ever opens.
const (
	exitOK            = 0
	exitBindFailure   = 1
	exitConfigInvalid = 2
)

func serveCmd() *cobra.Command {
	var (
		configPath     string
		bindAddress    string
		port           int
		allowedOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the DevTools Protocol server",
		Long: `Start the CDP JSON-RPC/WebSocket server.

Listens for WebSocket connections from a DevTools frontend (or any CDP
client) and serves the Browser/Page/DOM/CSS/Runtime/Debugger/Network/
Profiler/HeapProfiler/Security/Console/Storage/Timeline/Emulation
domains against an in-process mock browser.

Examples:
  corten-devtools serve
  corten-devtools serve --port=9333
  corten-devtools serve --config=devtools.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, bindAddress, port, allowedOrigins)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&bindAddress, "bind-address", "", "Interface to listen on (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", nil, "Allowed Origin header values (overrides config)")

	return cmd
}

func runServe(configPath, bindAddress string, port int, allowedOrigins []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		errorMsg("%s", err)
		os.Exit(exitConfigInvalid)
	}

	if bindAddress != "" {
		cfg.Transport.BindAddress = bindAddress
	}
	if port > 0 {
		cfg.Transport.Port = uint16(port)
	}
	if len(allowedOrigins) > 0 {
		cfg.Transport.AllowedOrigins = allowedOrigins
	}

	for _, w := range cfg.Validate() {
		warn("%s", w)
	}

	printBanner()
	fmt.Println()

	app := facade.New(cfg, browser.VersionInfo{
		ProtocolVersion: cfg.Transport.ProtocolVersion,
		Product:         "Corten-DevTools/" + version,
		Revision:        commit,
		UserAgent:       "corten-devtools/" + version,
		JSVersion:       "mock",
	}, os.Args, nil)

	if err := app.Start(); err != nil {
		errorMsg("%s", err)
		os.Exit(exitBindFailure)
	}
	success("Listening on %s", app.Addr())
	info("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println()
	info("Shutting down...")

	if err := app.Stop(context.Background()); err != nil {
		errorMsg("%s", err)
		return err
	}
	success("Stopped cleanly")
	os.Exit(exitOK)
	return nil
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
