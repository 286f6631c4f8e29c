package openai

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultEndpoint points to the OpenAI chat completions API.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

const defaultTimeout = 20 * time.Second

// BatchItem is one string queued for translation, keyed by a correlation id.
type BatchItem struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Comment string `json:"comment"`
}

// TranslationResult is one translated string returned by the model. The id
// matches the BatchItem it answers.
type TranslationResult struct {
	ID             int64
	TranslatedText string
}

// CallInfo reports token usage and the model that served the latest
// successful call.
type CallInfo struct {
	TokensUsed int64  `json:"tokens_used"`
	Model      string `json:"model"`
}

// CredentialSource supplies the API key and model identifier. An empty key
// means the service is unconfigured.
type CredentialSource interface {
	OpenAICredentials(ctx context.Context) (apiKey, model string, err error)
}

// Client sends translation batches to a chat-completions endpoint and asks the
// model to answer through a function call, so results come back as structured
// data instead of free text.
type Client struct {
	endpointURL string
	creds       CredentialSource
	httpClient  *http.Client

	mu       sync.Mutex
	lastInfo CallInfo
	hasInfo  bool
}

func NewClient(endpoint string, timeout time.Duration, creds CredentialSource) *Client {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpointURL: trimmed,
		creds:       creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TranslateBatch sends one batch in a single request. A response carrying no
// function-call output yields an empty result slice, not an error.
func (c *Client) TranslateBatch(ctx context.Context, items []BatchItem, targetLanguage string) ([]TranslationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client is nil")
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return nil, fmt.Errorf("target language is required")
	}

	apiKey, model, err := c.creds.OpenAICredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load openai credentials: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, newAPIError(KindUnconfigured, "no_api_key", "OpenAI API key is not configured", nil)
	}

	payload, err := json.Marshal(batchPayload{
		TargetLanguage: targetLanguage,
		Translations:   items,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal batch payload: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role:    "user",
				Content: string(payload),
			},
		},
		Functions: []functionSpec{translateBatchFunction()},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newAPIError(KindNetwork, "network_error", fmt.Sprintf("send translation request: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newAPIError(KindNetwork, "network_error", fmt.Sprintf("read translation response: %v", err), err)
	}
	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf(
			"API request failed with status code: %d. Response: %s",
			resp.StatusCode,
			strings.TrimSpace(string(respBody)),
		)
		return nil, newAPIError(KindRemote, "api_error", message, nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, newAPIError(KindInvalidResponse, "invalid_response", fmt.Sprintf("decode response body: %v", err), err)
	}

	arguments := parsed.functionCallArguments()
	if strings.TrimSpace(arguments) == "" {
		// The model declined to call the function. Not an error: the caller
		// moves on to the next page.
		return []TranslationResult{}, nil
	}

	results, err := parseFunctionArguments(arguments)
	if err != nil {
		return nil, newAPIError(KindInvalidResponse, "invalid_response", "Received no translations from the endpoint!", err)
	}

	c.mu.Lock()
	c.lastInfo = CallInfo{
		TokensUsed: parsed.Usage.TotalTokens,
		Model:      parsed.Model,
	}
	c.hasInfo = true
	c.mu.Unlock()

	return results, nil
}

// LastResponseInfo returns token usage and model of the latest successful
// call, and false when no call has succeeded yet.
func (c *Client) LastResponseInfo() (CallInfo, bool) {
	if c == nil {
		return CallInfo{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastInfo, c.hasInfo
}

type batchPayload struct {
	TargetLanguage string      `json:"target_language"`
	Translations   []BatchItem `json:"translations"`
}

type chatRequest struct {
	Model     string         `json:"model"`
	Messages  []chatMessage  `json:"messages"`
	Functions []functionSpec `json:"functions"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

//go:embed translations_response.schema.json
var translationsResponseSchemaJSON string

func translateBatchFunction() functionSpec {
	return functionSpec{
		Name:        "translate_text_batch",
		Description: "Translate multiple texts while maintaining IDs.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"translations": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"id": {
								"type": "string",
								"description": "The original translation ID from database."
							},
							"translated_text": {
								"type": "string",
								"description": "The translated text."
							}
						},
						"required": ["id", "translated_text"]
					}
				}
			},
			"required": ["translations"]
		}`),
	}
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			FunctionCall struct {
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int64 `json:"total_tokens"`
	} `json:"usage"`
}

func (r chatResponse) functionCallArguments() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.FunctionCall.Arguments
}
