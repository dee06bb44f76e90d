package client

import (
	"context"
)

// MethodSendMessage is the worker method that runs one agent turn.
const MethodSendMessage = "sendMessage"

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SendMessageParams are the arguments of the sendMessage method.
type SendMessageParams struct {
	APIKey        string        `json:"apiKey"`
	Model         string        `json:"model"`
	Messages      []ChatMessage `json:"messages"`
	WorkspacePath string        `json:"workspacePath,omitempty"`
	TavilyAPIKey  string        `json:"tavilyApiKey,omitempty"`
}

// SendMessage invokes the sendMessage worker method with typed params.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (string, error) {
	return c.Call(ctx, MethodSendMessage, params)
}
