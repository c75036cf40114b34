package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// LMStudioClient drives schedule generation through LM Studio's local
// OpenAI-compatible server, for fully offline operation.
type LMStudioClient struct {
	client openai.Client
	model  string
}

// NewLMStudioClient creates a client for a local LM Studio server. The model
// must name one of the models loaded into LM Studio.
func NewLMStudioClient(model, baseURL string) (*LMStudioClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("lm studio provider needs a model name")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	return &LMStudioClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(lmStudioKey()),
		),
		model: model,
	}, nil
}

// lmStudioKey picks a key for the SDK: a real one when the environment has
// it, else a placeholder. The local server ignores the key but the SDK
// insists on sending one.
func lmStudioKey() string {
	for _, env := range []string{"LMSTUDIO_API_KEY", "OPENAI_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return "lm-studio"
}

// Chat runs one completion and returns the model's text.
func (c *LMStudioClient) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toCompletionMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("lm studio completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("lm studio returned an empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON runs one completion and decodes the schedule payload, tolerating
// code fences and prose around the JSON body.
func (c *LMStudioClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	text, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), result); err != nil {
		return fmt.Errorf("decoding lm studio schedule output: %w (got: %s)", err, text)
	}
	return nil
}
