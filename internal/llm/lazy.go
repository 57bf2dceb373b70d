package llm

import (
	"context"
	"sync"
)

// LazyClient defers connecting to the provider until the first generation
// call. A failed connect is returned to that caller and retried on the next.
type LazyClient struct {
	config  *Config
	connect func(ctx context.Context) (Client, error)

	mu     sync.Mutex
	client Client
}

// NewLazyClient returns a Client that connects with NewClient on first use.
func NewLazyClient(config *Config, apiKey string) *LazyClient {
	if config == nil {
		config = DefaultConfig()
	}
	return &LazyClient{
		config: config,
		connect: func(ctx context.Context) (Client, error) {
			return NewClient(ctx, config, apiKey)
		},
	}
}

func (c *LazyClient) get(ctx context.Context) (Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

// GenerateContent connects if needed and delegates.
func (c *LazyClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	client, err := c.get(ctx)
	if err != nil {
		return "", err
	}
	return client.GenerateContent(ctx, prompt, tier)
}

// GenerateJSON connects if needed and delegates.
func (c *LazyClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	client, err := c.get(ctx)
	if err != nil {
		return "", err
	}
	return client.GenerateJSON(ctx, req)
}

// GetModel returns the configured model without connecting.
func (c *LazyClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close closes the underlying client if one was opened.
func (c *LazyClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
