// Package mcp exposes a registry as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/logging"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI is the resource listing registered implicators.
const RulesURI = "implicate://rules"

// Engine defines the registry surface exposed over MCP.
type Engine interface {
	Get(ctx context.Context, typ, id string) (any, bool, error)
	Put(ctx context.Context, typ, id string, value any) error
	Explain(ctx context.Context, typ, id string) (any, bool, []domain.TraceRecord, error)
	Rules() []*implicate.Implicator
}

// AttributeResult is the JSON payload of attribute tools.
type AttributeResult struct {
	Type  string               `json:"type"`
	ID    string               `json:"id"`
	Value any                  `json:"value"`
	Found bool                 `json:"found"`
	Trace []domain.TraceRecord `json:"trace,omitempty"`
}

// Server wraps an Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("implicate-mcp", strings.TrimSpace(implicate.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP endpoints over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MCPServer returns the underlying server, mainly for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_attribute",
		mcp.WithDescription("Resolve the value of an attribute, deriving it through registered rules when it was not stored."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Attribute type")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
	), s.handleGet)

	s.mcpServer.AddTool(mcp.NewTool("put_attribute",
		mcp.WithDescription("Store an explicit attribute value. Explicit values take precedence over derived ones."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Attribute type")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON encoded value; bare text is stored as a string")),
	), s.handlePut)

	s.mcpServer.AddTool(mcp.NewTool("explain_attribute",
		mcp.WithDescription("Resolve an attribute and return the trace of every lookup and rule attempt."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Attribute type")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
	), s.handleExplain)

	s.mcpServer.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List registered derivation rules in registration order."),
	), s.handleListRules)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Registered Rules",
		mcp.WithMIMEType("application/json"),
	), s.handleRulesResource)
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, id, errResult := keyArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	value, ok, err := s.engine.Get(ctx, typ, id)
	if err != nil {
		s.logger.Warn("MCP get failed", "type", typ, "id", id, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return jsonResult(AttributeResult{Type: typ, ID: id, Value: value, Found: ok})
}

func (s *Server) handlePut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, id, errResult := keyArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	raw, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}

	if err := s.engine.Put(ctx, typ, id, value); err != nil {
		s.logger.Warn("MCP put failed", "type", typ, "id", id, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("put failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored %s", domain.Key{Type: typ, ID: id})), nil
}

func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, id, errResult := keyArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	value, ok, trace, err := s.engine.Explain(ctx, typ, id)
	if err != nil {
		s.logger.Warn("MCP explain failed", "type", typ, "id", id, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
	}
	return jsonResult(AttributeResult{Type: typ, ID: id, Value: value, Found: ok, Trace: trace})
}

func (s *Server) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(implicate.DescribeRules(s.engine.Rules()))
}

func (s *Server) handleRulesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(implicate.DescribeRules(s.engine.Rules()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func keyArgs(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	typ, err := request.RequireString("type")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	id, err := request.RequireString("id")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return typ, id, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
