// Package mcp provides an MCP (Model Context Protocol) server exposing tkgel
// configuration and trace inspection to agents.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around a configuration file and its job
// folders.
type Server struct {
	server *sdk.Server
	config string // path to the config file
	root   string // root directory for job folders
}

// Config holds server configuration.
type Config struct {
	Name       string // Server name (e.g., "tkgel")
	Version    string // Server version
	ConfigPath string // Experiment config file served by the tools
	Root       string // Directory containing job folders
}

// NewServer creates a new MCP server with tkgel tools.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server: mcpServer,
		config: cfg.ConfigPath,
		root:   cfg.Root,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run starts the MCP server over stdio transport. Blocks until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// registerTools registers all tkgel MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "tkgel_get",
		Description: "Read a hyperparameter from the experiment configuration by dotted key (e.g. 'evokg.lr')",
	}, s.handleGet)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "tkgel_validate",
		Description: "Resolve the experiment configuration and report validation problems and unknown keys",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "tkgel_resolve",
		Description: "Return the fully resolved experiment configuration (imports merged, extension points stripped) as YAML",
	}, s.handleResolve)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "tkgel_trace_best",
		Description: "Find the best epoch for a metric in a job's trace store",
	}, s.handleTraceBest)
}

// registerResources registers the resolved config as a readable resource.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "tkgel://config/resolved",
		Name:        "tkgel-resolved-config",
		Description: "The fully resolved experiment configuration for the current project.",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)
}
