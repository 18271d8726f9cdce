// Package judge decides the outcome of a finished debate. Providers
// implement the same interface so the primary LLM judge can be chained
// with a fallback that synthesizes a verdict when the provider is
// unavailable.
package judge

import (
	"context"
	"strings"

	"github.com/neo/debatearena_backend/internal/types"
)

// Score holds the per-side numeric scores of a verdict
type Score struct {
	Affirmative int `json:"affirmative"`
	Opposition  int `json:"opposition"`
}

// Verdict is the structured judging output
type Verdict struct {
	Winner            types.Side `json:"winner"`
	Score             Score      `json:"score"`
	Feedback          string     `json:"feedback"`
	Reasoning         string     `json:"reasoning"`
	ImprovementPoints []string   `json:"improvement_points,omitempty"`
}

// Provider judges a debate given the topic title and the ordered
// argument texts of both sides
type Provider interface {
	Judge(ctx context.Context, topic string, affirmative, opposition []string) (*Verdict, error)
}

// clampScore bounds a score into [1, 100]
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}

// Clamp bounds both scores of the verdict into [1, 100]
func (v *Verdict) Clamp() {
	v.Score.Affirmative = clampScore(v.Score.Affirmative)
	v.Score.Opposition = clampScore(v.Score.Opposition)
}

// ComposeFeedback flattens a verdict into the single feedback text
// stored on the completed debate: feedback, reasoning and a bulleted
// improvement list separated by blank lines.
func ComposeFeedback(v *Verdict) string {
	lines := []string{
		v.Feedback,
		"",
		v.Reasoning,
		"",
		"Key Points for Improvement:",
	}
	for _, point := range v.ImprovementPoints {
		lines = append(lines, "- "+point)
	}
	return strings.Join(lines, "\n")
}
