package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"how many document chunks to retrieve (default 4)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Grounded bool     `json:"grounded"`
	Sources  []string `json:"sources,omitempty"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	DocumentName string `json:"document_name" jsonschema:"a name identifying the document; re-using a name replaces it"`
	Text         string `json:"text" jsonschema:"the document text to index"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	DocumentId string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the ingested documents and the conversation so far",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Index a document's text so later questions can draw on it",
	}, s.handleIngestText)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.pipeline.Answer(ctx, s.sess, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:   answer.Text,
		Grounded: answer.Grounded,
		Sources:  answer.Sources,
	}, nil
}

func (s *Server) handleIngestText(ctx context.Context, _ *mcp.CallToolRequest, input IngestTextInput) (*mcp.CallToolResult, IngestTextOutput, error) {
	doc, chunkCount, err := s.pipeline.IngestText(ctx, s.sess, input.DocumentName, input.Text)
	if err != nil {
		return nil, IngestTextOutput{}, err
	}

	return nil, IngestTextOutput{
		DocumentId: doc.Id,
		ChunkCount: chunkCount,
	}, nil
}
