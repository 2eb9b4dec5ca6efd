package rag

import (
	"fmt"
	"strings"

	"docassist/internal/domain/ragmodel"
)

// buildPrompt assembles the user-side prompt: retrieved context first (best
// match first, each block labelled with its document name), then the recent
// conversation in chronological order, then the question. The system
// instruction travels separately; providers attach it their own way.
func buildPrompt(question string, hits []ragmodel.SearchHit, nameOf func(string) string, history []ragmodel.Turn) string {
	var b strings.Builder

	if len(hits) > 0 {
		b.WriteString("Context from the user's documents:\n\n")
		for _, h := range hits {
			fmt.Fprintf(&b, "[source: %s]\n%s\n\n", nameOf(h.Chunk.DocId), h.Chunk.Text)
		}
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.Question, t.Answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
