package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	. "github.com/roelfdiedericks/trailmcp/internal/logging"
	. "github.com/roelfdiedericks/trailmcp/internal/metrics"
)

// ServerName is reported to clients during initialization
const ServerName = "trailmcp"

// Server is the MCP server with the trail tools registered on it
type Server struct {
	server  *mcp.Server
	backend Backend

	mu    sync.RWMutex
	tools map[string]Definition
}

// NewServer creates a server and registers every tool.
func NewServer(backend Backend, version string) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
		backend: backend,
		tools:   make(map[string]Definition),
	}
	s.registerAll()
	return s
}

// Run serves on transport until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	L_info("tools: serving", "tools", s.Count())
	return s.server.Run(ctx, transport)
}

// Has returns true if a tool with the given name is registered
func (s *Server) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tools[name]
	return ok
}

// List returns the registered tool names, sorted
func (s *Server) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tools)
}

// Summary lists the tools one per line with the first sentence of each
// description.
//
//	get-current-trail-content: Return the text of the lesson in the active tab.
//	goto-page: Open a URL in the active tab.
func (s *Server) Summary() string {
	var sb strings.Builder
	for _, name := range s.List() {
		s.mu.RLock()
		def := s.tools[name]
		s.mu.RUnlock()
		fmt.Fprintf(&sb, "%s: %s\n", name, truncateDescription(def.Description, 100))
	}
	return sb.String()
}

// register binds a typed handler to a tool. Every call gets a short id in the
// logs, and any error comes back to the client as an isError text result.
func register[In any](s *Server, name, description string, fn func(ctx context.Context, in In) (string, error)) {
	s.mu.Lock()
	s.tools[name] = Definition{Name: name, Description: description}
	s.mu.Unlock()

	mcp.AddTool(s.server, &mcp.Tool{Name: name, Description: description},
		func(ctx context.Context, req *mcp.CallToolRequest, in In) (result *mcp.CallToolResult, _ any, _ error) {
			callID := uuid.NewString()[:8]
			start := time.Now()
			L_debug("tools: call", "tool", name, "call", callID)

			defer func() {
				if r := recover(); r != nil {
					L_error("tools: call panicked", "tool", name, "call", callID, "panic", r)
					MetricFailWithReason("tool", name, "panic")
					result = errorResult(fmt.Errorf("%s failed: %v", name, r))
				}
			}()

			text, err := fn(ctx, in)
			MetricSince("tool", name, start)
			if err != nil {
				MetricFailWithReason("tool", name, "error")
				L_warn("tools: call failed", "tool", name, "call", callID, "elapsed", time.Since(start), "error", err)
				return errorResult(err), nil, nil
			}
			MetricSuccess("tool", name)
			L_debug("tools: call done", "tool", name, "call", callID, "elapsed", time.Since(start), "chars", len(text))
			return textResult(text), nil, nil
		})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// truncateDescription shortens a description to its first sentence or maxLen
func truncateDescription(desc string, maxLen int) string {
	if idx := strings.Index(desc, ". "); idx > 0 && idx < maxLen {
		return desc[:idx+1]
	}
	if len(desc) <= maxLen {
		return desc
	}

	// don't cut words
	truncated := desc[:maxLen]
	if idx := strings.LastIndex(truncated, " "); idx > maxLen/2 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
