// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// APIKey may be empty: the service then answers from the built-in
	// demo table instead of calling out.
	APIKey  string
	BaseURL string
	Model   string

	// Timeout bounds the single synchronous upstream call. There are no
	// retries anywhere: one failed attempt becomes fallback text.
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:   "gpt-4.1-nano",
		Timeout: 30 * time.Second,
	}
}
