package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/atspi-inspector/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing an inspector session",
	Long: `Start a Model Context Protocol (MCP) server holding one inspector session.
Agents list roots, select one, then hover, press and pick over the overlay and
read back the tree or a rendered overlay while it builds.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  atspi-inspector serve
  atspi-inspector serve --transport streamable-http --port 8080
  atspi-inspector serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addViewportFlags(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 2000, "Root listing cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().Duration("wait", 0, "How long select and refresh wait for a build (default from config)")
}

// defaultServeWait bounds select and refresh when neither --wait nor the
// config sets a build timeout.
const defaultServeWait = 30 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	wait, _ := cmd.Flags().GetDuration("wait")

	vp, err := getViewport(cmd)
	if err != nil {
		return err
	}
	pal, err := cfg.Palette()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("wait") {
		if wait, err = cfg.Timeout(); err != nil {
			return err
		}
	}

	provider, err := newProvider()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer provider.Close()

	srv := server.New(provider, server.Config{
		Transport:    transport,
		Port:         port,
		CacheTTL:     time.Duration(cacheTTLMs) * time.Millisecond,
		BuildTimeout: buildTimeoutOr(wait, defaultServeWait),
		Viewport:     vp,
		Palette:      pal,
	})
	defer srv.Close()
	return srv.Serve()
}
