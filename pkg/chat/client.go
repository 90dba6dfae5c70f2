package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bizmate/bizmate/internal/config"
	log "github.com/sirupsen/logrus"
)

// EmailToolName is the function name advertised to the model for sending email.
const EmailToolName = "send_email"

// CompletionRequest is one stateless assistant call.
type CompletionRequest struct {
	SystemPrompt    string
	UserMessage     string
	EnableEmailTool bool
}

// EmailToolCall carries the arguments the model supplied for send_email.
type EmailToolCall struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Completion is the model's answer: either plain content or a tool call.
type Completion struct {
	Content  string
	ToolCall *EmailToolCall
}

// BackendError wraps an error message produced by the LLM backend itself, as
// opposed to a transport failure. Its text is safe to show to the user.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

type LlmClient interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	http    *http.Client
	baseUrl string
	apiKey  string
	model   string
}

func NewOpenAIClient(cfg config.Llm) *OpenAIClient {
	return &OpenAIClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseUrl: cfg.BaseUrl,
		apiKey:  cfg.ApiKey,
		model:   cfg.Model,
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

var emailToolParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"to": {"type": "string", "description": "Recipient email address"},
		"subject": {"type": "string", "description": "Email subject line"},
		"body": {"type": "string", "description": "Plain text email body"}
	},
	"required": ["to", "subject", "body"]
}`)

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	payload := wireRequest{
		Model: c.model,
		Messages: []wireMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserMessage},
		},
	}
	if req.EnableEmailTool {
		payload.Tools = []wireTool{{
			Type: "function",
			Function: wireFunction{
				Name:        EmailToolName,
				Description: "Write and send an email on behalf of the business owner",
				Parameters:  emailToolParameters,
			},
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseUrl+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Completion{}, fmt.Errorf("failed to decode completion response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return Completion{}, &BackendError{Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("completion request returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return Completion{}, fmt.Errorf("completion response contained no choices")
	}

	choice := parsed.Choices[0].Message
	if len(choice.ToolCalls) > 0 && choice.ToolCalls[0].Function.Name == EmailToolName {
		var call EmailToolCall
		if err := json.Unmarshal([]byte(choice.ToolCalls[0].Function.Arguments), &call); err != nil {
			log.Warnf("could not parse %s arguments: %v", EmailToolName, err)
			return Completion{Content: choice.Content}, nil
		}
		return Completion{Content: choice.Content, ToolCall: &call}, nil
	}
	return Completion{Content: choice.Content}, nil
}
