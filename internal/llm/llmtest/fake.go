// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"
)

// Client is a scripted llm.Client that records every prompt it receives.
type Client struct {
	// Response is returned by GenerateContent when Err is nil.
	Response string
	// Err is returned by GenerateContent when set.
	Err error
	// GenerateFunc overrides Response and Err when set.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
	closed  int
}

// GenerateContent records prompt and returns the scripted result.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.GenerateFunc != nil {
		return c.GenerateFunc(ctx, prompt)
	}
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// Model returns a fixed model name.
func (c *Client) Model() string {
	return "fake-model"
}

// Close counts the call.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return nil
}

// Prompts returns every prompt received so far.
func (c *Client) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Calls returns the number of GenerateContent calls.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// Closed returns the number of Close calls.
func (c *Client) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
