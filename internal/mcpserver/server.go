package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"docassist/internal/rag"
	"docassist/internal/session"
	"docassist/pkg/logkit"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes the answer pipeline as MCP tools over stdio. It runs
// against one implicit session: an MCP client is a single conversation, so
// everything it ingests and asks shares that session's index and history.
type Server struct {
	pipeline rag.Service
	sess     *session.Session
	server   *mcp.Server
	logger   *logkit.Logger
}

func NewServer(pipeline rag.Service, sessions *session.Manager) *Server {
	impl := &mcp.Implementation{
		Name:    "docassist",
		Version: Version,
	}

	s := &Server{
		pipeline: pipeline,
		sess:     sessions.Create(),
		server:   mcp.NewServer(impl, nil),
		logger:   logkit.NewLogger("MCP Server"),
	}

	s.registerTools()
	return s
}

// Run serves MCP over stdio. It blocks until the context is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server running on stdio", "sessionId", s.sess.Id)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
