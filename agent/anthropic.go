package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// AnthropicChatModel is a minimal eino ChatModel speaking the Anthropic
// /v1/messages protocol. Slide generation is a single-shot exchange, so no
// tool calling or streaming is wired up.
type AnthropicChatModel struct {
	config *AnthropicConfig
	tools  []*schema.ToolInfo
}

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

func NewAnthropicChatModel(ctx context.Context, config *AnthropicConfig) (*AnthropicChatModel, error) {
	if config == nil || config.Model == "" {
		return nil, fmt.Errorf("anthropic chat model requires a model name")
	}
	return &AnthropicChatModel{config: config}, nil
}

func (m *AnthropicChatModel) BindTools(tools []*schema.ToolInfo) error {
	m.tools = tools
	return nil
}

func (m *AnthropicChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	maxTokens := m.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	reqBody := map[string]interface{}{
		"model":      m.config.Model,
		"max_tokens": maxTokens,
	}

	var messages []map[string]interface{}
	var systemPrompt string
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			systemPrompt += msg.Content + "\n"
		case schema.User:
			messages = append(messages, map[string]interface{}{
				"role":    "user",
				"content": msg.Content,
			})
		case schema.Assistant:
			messages = append(messages, map[string]interface{}{
				"role":    "assistant",
				"content": msg.Content,
			})
		}
	}
	if systemPrompt != "" {
		reqBody["system"] = strings.TrimSpace(systemPrompt)
	}
	reqBody["messages"] = messages

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	fullURL := "https://api.anthropic.com/v1/messages"
	if m.config.BaseURL != "" {
		fullURL = strings.TrimSuffix(m.config.BaseURL, "/") + "/v1/messages"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fullURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: 300 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Anthropic API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	responseMsg := &schema.Message{Role: schema.Assistant}
	for _, block := range result.Content {
		if block.Type == "text" {
			responseMsg.Content += block.Text
		}
	}
	return responseMsg, nil
}

func (m *AnthropicChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not supported yet")
}
