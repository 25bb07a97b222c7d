package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	cfg.HTTPClient = &http.Client{
		Transport: proxyTransport(proxyAddr),
		// No timeout: highlight analysis of long transcripts can run for minutes
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// proxyTransport routes requests through proxyAddr when it parses as a URL;
// an empty or malformed address means a direct connection.
func proxyTransport(proxyAddr string) *http.Transport {
	transport := &http.Transport{}
	if proxyAddr == "" {
		return transport
	}
	proxyUrl, err := url.Parse(proxyAddr)
	if err != nil {
		return transport
	}
	transport.Proxy = http.ProxyURL(proxyUrl)
	return transport
}

// ChatCompletion issues one chat request with the provider's default sampling.
func (c *Client) ChatCompletion(systemPrompt, userPrompt string) (string, error) {
	return c.complete(systemPrompt, userPrompt, -1)
}

// DeterministicCompletion issues one chat request at temperature 0, for
// operations that must partition existing data rather than generate new text.
func (c *Client) DeterministicCompletion(systemPrompt, userPrompt string) (string, error) {
	return c.complete(systemPrompt, userPrompt, 0)
}

func (c *Client) complete(systemPrompt, userPrompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if temperature == 0 {
		// The request struct drops a literal zero via omitempty, which would
		// silently fall back to the provider default. The smallest nonzero
		// float survives serialization and is indistinguishable from 0.
		req.Temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(context.Background(), req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
