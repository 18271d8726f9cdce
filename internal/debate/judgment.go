package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/judge"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/notify"
	"github.com/neo/debatearena_backend/internal/types"
)

// runJudgment resolves a debate that has entered the judging state. It
// gathers the arguments, obtains a verdict (degrading to the fallback
// provider on any judge failure) and completes the debate. Runs exactly
// once per debate, synchronously within the final submission.
func (m *Machine) runJudgment(ctx context.Context, debate *database.Debate) error {
	arguments, err := m.db.GetArgumentsByDebate(debate.ID)
	if err != nil {
		return fmt.Errorf("failed to load arguments: %v", err)
	}

	var affirmative, opposition []string
	for _, argument := range arguments {
		if argument.Side == types.SideAffirmative {
			affirmative = append(affirmative, argument.Content)
		} else {
			opposition = append(opposition, argument.Content)
		}
	}

	topicTitle := "Unknown Topic"
	if topic, err := m.db.GetTopic(debate.TopicID); err == nil {
		topicTitle = topic.Title
	}

	judgeCtx, cancel := context.WithTimeout(ctx, m.judgeTimeout)
	defer cancel()

	start := time.Now()
	verdict, err := m.judge.Judge(judgeCtx, topicTitle, affirmative, opposition)
	if err != nil {
		return fmt.Errorf("failed to obtain verdict: %w", err)
	}
	verdict.Clamp()

	logging.LogJudgingEvent("verdict_obtained", debate.ID, map[string]interface{}{
		"winner":      verdict.Winner,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	winnerID := debate.AffirmativeUserID
	if verdict.Winner == types.SideOpposition {
		winnerID = debate.OppositionUserID
	}

	if err := m.Complete(debate.ID, winnerID, judge.ComposeFeedback(verdict)); err != nil {
		return err
	}

	if m.notifier != nil {
		payload := map[string]interface{}{
			"debateId":          debate.ID,
			"winnerId":          winnerID,
			"feedback":          verdict.Feedback,
			"reasoning":         verdict.Reasoning,
			"score":             verdict.Score,
			"improvementPoints": verdict.ImprovementPoints,
		}
		m.notifier.SendToUser(debate.AffirmativeUserID, notify.EventDebateComplete, payload)
		m.notifier.SendToUser(debate.OppositionUserID, notify.EventDebateComplete, payload)
	}

	return nil
}
