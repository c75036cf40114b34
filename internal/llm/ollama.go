package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient runs schedule generation against a local Ollama daemon.
// Local models are chattier than hosted ones, so their output goes through
// the same markdown-tolerant JSON extraction as every other backend.
type OllamaClient struct {
	llm   *ollama.LLM
	model string
}

// NewOllamaClient connects to an Ollama server. The model is mandatory
// because Ollama has no default; baseURL falls back to the local daemon.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ollama provider needs a model name (e.g. llama3)")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to ollama at %s: %w", baseURL, err)
	}

	return &OllamaClient{llm: llm, model: model}, nil
}

// Chat runs one completion and returns the model's text.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages)
}

// ChatJSON runs one completion in JSON mode and decodes the result. Even in
// JSON mode local models sometimes fence or pad the payload, so the text is
// passed through extractJSON before decoding.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	text, err := c.complete(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), result); err != nil {
		return fmt.Errorf("decoding ollama schedule output: %w (got: %s)", err, text)
	}
	return nil
}

func (c *OllamaClient) complete(ctx context.Context, messages []Message, extra ...llms.CallOption) (string, error) {
	opts := append([]llms.CallOption{llms.WithModel(c.model)}, extra...)
	resp, err := c.llm.GenerateContent(ctx, chatHistory(messages), opts...)
	if err != nil {
		return "", fmt.Errorf("ollama completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ollama returned an empty completion")
	}
	return resp.Choices[0].Content, nil
}

// chatHistory converts chat messages into langchain content parts.
func chatHistory(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		out = append(out, llms.TextParts(chatRole(m.Role), m.Content))
	}
	return out
}

// chatRole maps a message role to the langchain message type. Unknown roles
// are treated as user input.
func chatRole(role string) schema.ChatMessageType {
	switch strings.ToLower(role) {
	case "system":
		return schema.ChatMessageTypeSystem
	case "assistant":
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
