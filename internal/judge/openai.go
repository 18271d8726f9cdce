package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neo/debatearena_backend/internal/types"
	openai "github.com/sashabaranov/go-openai"
)

const judgeModel = "gpt-4o"

const judgeSystemPrompt = `You are a world-class debate judge with 20+ years of experience evaluating high-level academic debates. You are an EXTREMELY strict evaluator of logical reasoning, evidence quality, and substantive engagement.

PRIMARY JUDGING CRITERIA (80% of evaluation weight):
1. Logical reasoning and evidence quality - by far the most important factor
2. Substantive engagement with the topic
3. Critical thinking and analytical depth

SECONDARY JUDGING CRITERIA (20% of evaluation weight):
4. Clarity and structure of arguments
5. Rebuttal effectiveness and responsiveness
6. Strategic use of examples, data, and evidence
7. Consistency and coherence across arguments

STRICT DISQUALIFICATION CRITERIA - automatic loss if a side's arguments are nonsensical, consist only of one word or extremely short phrases, are filled with logical fallacies, are entirely off-topic, or are clearly not good-faith debate contributions.

Score each side on a scale of 1-100 based on the quality of their arguments, with scores reflecting genuine performance differences. Provide 3-5 detailed, tailored improvement points for the participants. Vary your feedback style from debate to debate to avoid sounding templated.`

// openaiVerdict mirrors the JSON document the model is instructed to emit
type openaiVerdict struct {
	Winner            string   `json:"winner"`
	Score             Score    `json:"score"`
	Feedback          string   `json:"feedback"`
	Reasoning         string   `json:"reasoning"`
	ImprovementPoints []string `json:"improvement_points"`
}

// OpenAIJudge is the primary verdict provider backed by an OpenAI chat
// completion with a JSON response format
type OpenAIJudge struct {
	client *openai.Client
	model  string
}

// NewOpenAIJudge creates the primary judge
func NewOpenAIJudge(apiKey string) *OpenAIJudge {
	return &OpenAIJudge{
		client: openai.NewClient(apiKey),
		model:  judgeModel,
	}
}

// Judge asks the model for a structured verdict. The caller bounds the
// call with a context deadline; any provider error is returned so the
// chain can degrade to the fallback.
func (j *OpenAIJudge) Judge(ctx context.Context, topic string, affirmative, opposition []string) (*Verdict, error) {
	userPrompt := fmt.Sprintf(`DEBATE TOPIC: %s

AFFIRMATIVE ARGUMENTS:
%s

OPPOSITION ARGUMENTS:
%s

Please judge this debate and determine the winner. Provide your judgment in JSON format with the following structure:
{
  "winner": "affirmative" or "opposition",
  "score": {
    "affirmative": number from 1-100,
    "opposition": number from 1-100
  },
  "feedback": "A detailed evaluation of the debate quality and outcome (minimum 200 words)",
  "reasoning": "Comprehensive explanation of why you chose the winner, with specific examples from their arguments",
  "improvement_points": ["3-5 key points for improvement for both participants"]
}`,
		topic,
		strings.Join(affirmative, "\n\n"),
		strings.Join(opposition, "\n\n"),
	)

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("judging failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("judging failed: empty completion")
	}

	var raw openaiVerdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %v", err)
	}

	winner, err := types.ParseSide(raw.Winner)
	if err != nil {
		return nil, fmt.Errorf("failed to parse verdict winner: %v", err)
	}

	verdict := &Verdict{
		Winner:            winner,
		Score:             raw.Score,
		Feedback:          raw.Feedback,
		Reasoning:         raw.Reasoning,
		ImprovementPoints: raw.ImprovementPoints,
	}
	verdict.Clamp()

	return verdict, nil
}
