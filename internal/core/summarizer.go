package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edvin/keyhub/internal/llm"
)

// summarySchema constrains the model output to {summary, cool_facts}.
const summarySchema = `{
  "type": "object",
  "properties": {
    "summary": {
      "type": "string",
      "description": "A concise summary of the repository based on the README."
    },
    "cool_facts": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 3,
      "maxItems": 5,
      "description": "A list of 3-5 cool or interesting facts about the repository."
    }
  },
  "required": ["summary", "cool_facts"],
  "additionalProperties": false
}`

// Summary is the structured result of summarizing a README.
type Summary struct {
	Summary   string   `json:"summary"`
	CoolFacts []string `json:"cool_facts"`
}

// ChatClient is the LLM operation the summarizer depends on. *llm.Client
// satisfies this interface.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// SummarizerService delegates README summarization to a schema-constrained
// chat completion. It performs no analysis itself. A nil client means the
// backend is not configured.
type SummarizerService struct {
	client ChatClient
}

func NewSummarizerService(client ChatClient) *SummarizerService {
	return &SummarizerService{client: client}
}

// Summarize sends the README text to the LLM and parses the structured
// result. Upstream failure, malformed output, or a fact count outside 3-5
// all yield ErrSummarization. Nothing is retried.
func (s *SummarizerService) Summarize(ctx context.Context, readme string) (*Summary, error) {
	if s.client == nil {
		return nil, ErrSummarizerDisabled
	}

	temperature := 0.3
	req := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "user", Content: "Summarize this GitHub repository from this README file content:\n\n" + readme},
		},
		Temperature: &temperature,
		ResponseFormat: &llm.ResponseFormat{
			Type: "json_schema",
			JSONSchema: &llm.JSONSchemaFormat{
				Name:   "summarize_github_repo",
				Strict: true,
				Schema: json.RawMessage(summarySchema),
			},
		},
	}

	resp, err := s.client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSummarization, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrSummarization)
	}

	var summary Summary
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &summary); err != nil {
		return nil, fmt.Errorf("%w: malformed output: %s", ErrSummarization, err)
	}

	if summary.Summary == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrSummarization)
	}
	if n := len(summary.CoolFacts); n < 3 || n > 5 {
		return nil, fmt.Errorf("%w: expected 3-5 cool facts, got %d", ErrSummarization, n)
	}

	return &summary, nil
}
