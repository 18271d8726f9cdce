package judge

import (
	"context"
	"fmt"

	"github.com/neo/debatearena_backend/internal/logging"
)

// Chain tries each provider in order until one yields a verdict.
// Provider errors are absorbed; with a fallback judge as the final
// provider the chain itself never fails.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider chain
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Judge returns the first successful verdict in provider order
func (c *Chain) Judge(ctx context.Context, topic string, affirmative, opposition []string) (*Verdict, error) {
	var lastErr error
	for i, provider := range c.providers {
		verdict, err := provider.Judge(ctx, topic, affirmative, opposition)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
		logging.LogJudgingEvent("provider_failed", "", map[string]interface{}{
			"provider_index": i,
			"error":          err.Error(),
		})
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no verdict providers configured")
	}
	return nil, fmt.Errorf("all verdict providers failed: %w", lastErr)
}
