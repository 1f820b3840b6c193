// Package mcpserver exposes task operations as MCP tools over stdio. The
// server is bound to a single verified subject at construction time; every
// tool call runs with that subject in context, so the service-layer ownership
// rules apply to MCP clients exactly as they do to HTTP clients.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/msomdec/taskchat/internal/service"
)

// serverName identifies this MCP server to clients.
const serverName = "taskchat"

// Server hosts the MCP server for one authenticated subject.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server whose tools act on behalf of subjectID.
func New(tasks *service.TaskService, subjectID, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, &mcp.ServerOptions{})

	mcp.AddTool(mcpServer, AddTaskTool(), AddTaskHandler(tasks, subjectID))
	mcp.AddTool(mcpServer, ListTasksTool(), ListTasksHandler(tasks, subjectID))
	mcp.AddTool(mcpServer, CompleteTaskTool(), CompleteTaskHandler(tasks, subjectID))
	mcp.AddTool(mcpServer, UpdateTaskTool(), UpdateTaskHandler(tasks, subjectID))
	mcp.AddTool(mcpServer, DeleteTaskTool(), DeleteTaskHandler(tasks, subjectID))

	return &Server{mcpServer: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	return s.mcpServer.Run(ctx, transport)
}
