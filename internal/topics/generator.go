// Package topics generates debate topics with an LLM, falling back to a
// fixed starter list when the provider is unavailable.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultTopics seed the topic pool when generation is unavailable
var DefaultTopics = []string{
	"Should artificial intelligence be strictly regulated?",
	"Is universal basic income a viable economic policy?",
	"Should college education be free for all citizens?",
	"Is social media doing more harm than good?",
	"Should voting be mandatory in democratic countries?",
}

// Generator produces balanced debate topics
type Generator struct {
	llm llms.LLM
}

// NewGenerator creates a topic generator
func NewGenerator(apiKey string) (*Generator, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel("gpt-4o-mini"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic generator LLM: %v", err)
	}

	return &Generator{llm: llm}, nil
}

// Generate returns count debate topic titles. Provider errors degrade to
// the default list rather than failing.
func (g *Generator) Generate(ctx context.Context, count int) []string {
	if count <= 0 {
		count = len(DefaultTopics)
	}

	prompt := fmt.Sprintf(`Generate %d interesting debate topics that would work well for formal debates.
The topics should be controversial enough to have strong arguments on both sides.

Your response MUST ONLY be a valid JSON object of the form {"topics": ["topic 1", "topic 2"]}. Output nothing but the JSON object, starting with a { symbol.`, count)

	completion, err := g.llm.Call(ctx, prompt)
	if err != nil {
		logging.Warn("Topic generation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return defaults(count)
	}

	completion = strings.TrimSpace(completion)
	completion = strings.Trim(completion, "`")

	var parsed struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(completion), &parsed); err != nil || len(parsed.Topics) == 0 {
		logging.Warn("Failed to parse generated topics, using defaults", map[string]interface{}{
			"raw": completion,
		})
		return defaults(count)
	}

	if len(parsed.Topics) > count {
		parsed.Topics = parsed.Topics[:count]
	}
	return parsed.Topics
}

func defaults(count int) []string {
	if count >= len(DefaultTopics) {
		return DefaultTopics
	}
	return DefaultTopics[:count]
}
