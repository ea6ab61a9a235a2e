package refiner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI completes prompts against an OpenAI-compatible chat completions API.
type OpenAI struct {
	BaseURL   string
	Model     string
	APIKeyEnv string
	Client    *http.Client
}

// Check verifies the credential variable is set.
func (o *OpenAI) Check() error {
	if os.Getenv(o.APIKeyEnv) == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredential, o.APIKeyEnv)
	}
	return nil
}

func (o *OpenAI) client(key string) *openai.Client {
	cfg := openai.DefaultConfig(key)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	if o.Client != nil {
		cfg.HTTPClient = o.Client
	}
	return openai.NewClientWithConfig(cfg)
}

// Complete sends one chat completion request.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	key := os.Getenv(o.APIKeyEnv)
	if key == "" {
		return "", &Error{Op: "openai", Err: ErrMissingCredential, Details: o.APIKeyEnv}
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := o.client(key).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Op: "openai", Err: ErrEmptyResponse, Retryable: true}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps SDK errors onto *Error. Rate limits and server
// errors are retryable, as are transport failures other than cancellation.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Op:        "openai",
			Err:       fmt.Errorf("status %d: %w", apiErr.HTTPStatusCode, err),
			Details:   apiErr.Type,
			Retryable: retryableStatus(apiErr.HTTPStatusCode),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Op:        "openai",
			Err:       fmt.Errorf("status %d: %w", reqErr.HTTPStatusCode, err),
			Retryable: retryableStatus(reqErr.HTTPStatusCode),
		}
	}
	return &Error{Op: "openai", Err: err, Retryable: !errors.Is(err, context.Canceled)}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
