package llm

import "context"

// Provider generates text from an assembled prompt. Prompt assembly (the
// grounding context, the history window, the question) is the pipeline's
// job; providers only carry the request to their hosted model.
type Provider interface {
	Generate(ctx context.Context, systemInstruction string, userPrompt string) (string, error)
}
