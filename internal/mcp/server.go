// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/internal/log"
)

// Retriever provides similarity search for MCP tools.
type Retriever interface {
	Query(ctx context.Context, projectID int64, question string) ([]search.Match, error)
}

// Answerer provides grounded question answering for MCP tools.
type Answerer interface {
	Answer(ctx context.Context, p project.Project, question string) (string, []project.FileReference, error)
}

// ProjectLookup resolves projects by id.
type ProjectLookup interface {
	Get(ctx context.Context, id int64) (project.Project, error)
}

// Server wraps the MCP server with neuron-specific tools.
type Server struct {
	mcpServer *server.MCPServer
	projects  ProjectLookup
	retriever Retriever
	answerer  Answerer
	logger    *log.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(projects ProjectLookup, retriever Retriever, answerer Answerer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		projects:  projects,
		retriever: retriever,
		answerer:  answerer,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"neuron",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all neuron tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search_codebase",
		mcp.WithDescription("Find the source files of an indexed project most relevant to a query"),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("The id of the indexed project"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearch)

	askTool := mcp.NewTool("ask_codebase",
		mcp.WithDescription("Ask a question about an indexed project and get an answer grounded in its source files"),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("The id of the indexed project"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
	mcpServer.AddTool(askTool, s.handleAsk)
}

// handleSearch handles the search_codebase tool invocation.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireInt("project_id")
	if err != nil {
		return mcp.NewToolResultError("project_id is required"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	if _, err := s.projects.Get(ctx, int64(projectID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project %d: %v", projectID, err)), nil
	}

	matches, err := s.retriever.Query(ctx, int64(projectID), query)
	if err != nil {
		s.logger.Error("mcp search failed", "project_id", projectID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type searchResult struct {
		Path       string  `json:"path"`
		Summary    string  `json:"summary"`
		Similarity float64 `json:"similarity"`
	}

	results := make([]searchResult, len(matches))
	for i, m := range matches {
		results[i] = searchResult{
			Path:       m.Path(),
			Summary:    m.Summary(),
			Similarity: m.Similarity(),
		}
	}

	jsonBytes, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleAsk handles the ask_codebase tool invocation.
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireInt("project_id")
	if err != nil {
		return mcp.NewToolResultError("project_id is required"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question is required"), nil
	}

	p, err := s.projects.Get(ctx, int64(projectID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project %d: %v", projectID, err)), nil
	}

	answer, references, err := s.answerer.Answer(ctx, p, question)
	if err != nil {
		s.logger.Error("mcp ask failed", "project_id", projectID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	type askResult struct {
		Answer     string   `json:"answer"`
		References []string `json:"references"`
	}

	result := askResult{Answer: answer}
	for _, ref := range references {
		result.References = append(result.References, ref.Path())
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
