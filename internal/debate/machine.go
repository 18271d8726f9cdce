// Package debate owns the per-debate turn and round progression. All
// mutations of a debate row flow through the Machine, which validates
// submissions, advances the state machine and triggers judging when the
// rounds are exhausted.
package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/judge"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/notify"
	"github.com/neo/debatearena_backend/internal/types"
)

const (
	// MinArgumentWords is the minimum whitespace-delimited token count
	// for a submission
	MinArgumentWords = 60

	// DefaultMaxRounds is the number of rounds per debate
	DefaultMaxRounds = 3

	// DefaultTimePerTurn is the per-turn budget in seconds
	DefaultTimePerTurn = 300

	// Point economy applied at completion
	winnerPoints = 20
	loserPoints  = 5

	defaultJudgeTimeout = 60 * time.Second
)

// Notifier pushes events to participants. *notify.Hub satisfies it.
type Notifier interface {
	SendToUser(userID string, eventType string, payload interface{})
}

// Machine is the debate state machine. Submissions for the same debate
// are serialized by a per-debate mutex; the database is the durability
// boundary.
type Machine struct {
	db           database.DatabaseInterface
	notifier     Notifier
	judge        judge.Provider
	judgeTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMachine creates a debate state machine. The judge provider should
// be a chain ending in a fallback so judging can never strand a debate.
func NewMachine(db database.DatabaseInterface, notifier Notifier, judgeProvider judge.Provider) *Machine {
	return &Machine{
		db:           db,
		notifier:     notifier,
		judge:        judgeProvider,
		judgeTimeout: defaultJudgeTimeout,
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockForDebate returns the mutex serializing mutations of one debate
func (m *Machine) lockForDebate(debateID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[debateID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[debateID] = lock
	}
	return lock
}

// releaseLock drops the per-debate mutex once the debate is terminal
func (m *Machine) releaseLock(debateID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, debateID)
}

// Create creates a new debate in the active state with the affirmative
// side to speak first in round 1
func (m *Machine) Create(topicID int64, affirmativeUserID, oppositionUserID string, maxRounds, timePerTurn, backgroundIndex int) (*database.Debate, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	if timePerTurn <= 0 {
		timePerTurn = DefaultTimePerTurn
	}

	debate := &database.Debate{
		ID:                uuid.New().String(),
		TopicID:           topicID,
		AffirmativeUserID: affirmativeUserID,
		OppositionUserID:  oppositionUserID,
		Status:            types.StatusActive,
		CurrentTurn:       types.SideAffirmative,
		CurrentRound:      1,
		MaxRounds:         maxRounds,
		TimePerTurn:       timePerTurn,
		BackgroundIndex:   backgroundIndex,
		StartTime:         time.Now().UTC(),
	}

	if err := m.db.CreateDebate(debate); err != nil {
		logging.LogDebateEvent("debate_creation_failed", debate.ID, map[string]interface{}{
			"topic_id": topicID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("failed to create debate: %v", err)
	}

	logging.LogDebateEvent("debate_created", debate.ID, map[string]interface{}{
		"topic_id":    topicID,
		"affirmative": affirmativeUserID,
		"opposition":  oppositionUserID,
		"max_rounds":  maxRounds,
	})

	return debate, nil
}

// GetDebate returns the current debate state. The read has no side
// effects so clients may poll it freely as a fallback for missed pushes.
func (m *Machine) GetDebate(debateID string) (*database.Debate, error) {
	debate, err := m.db.GetDebate(debateID)
	if err != nil {
		return nil, ErrDebateNotFound
	}
	return debate, nil
}

// SubmitArgument validates and applies one argument submission.
// Preconditions are checked in order (existence, active status,
// participation, side, turn, length) and nothing is persisted when any
// of them fails. On the final submission of the last round the judgment
// workflow runs synchronously before returning.
func (m *Machine) SubmitArgument(ctx context.Context, debateID, userID string, side types.Side, content string) (*database.Argument, error) {
	lock := m.lockForDebate(debateID)
	lock.Lock()
	defer lock.Unlock()

	debate, err := m.db.GetDebate(debateID)
	if err != nil {
		return nil, ErrDebateNotFound
	}

	if debate.Status != types.StatusActive {
		return nil, ErrDebateNotActive
	}

	if userID != debate.AffirmativeUserID && userID != debate.OppositionUserID {
		return nil, ErrNotParticipant
	}

	actualSide := types.SideAffirmative
	if userID == debate.OppositionUserID {
		actualSide = types.SideOpposition
	}
	if side != actualSide {
		return nil, ErrSideMismatch
	}

	if debate.CurrentTurn != side {
		return nil, ErrNotYourTurn
	}

	words := len(strings.Fields(content))
	if words < MinArgumentWords {
		return nil, &ArgumentTooShortError{Words: words, MinWords: MinArgumentWords}
	}

	argument := &database.Argument{
		DebateID:    debateID,
		UserID:      userID,
		Round:       debate.CurrentRound,
		Side:        side,
		Content:     content,
		SubmittedAt: time.Now().UTC(),
	}
	if _, err := m.db.CreateArgument(argument); err != nil {
		return nil, fmt.Errorf("failed to save argument: %v", err)
	}

	// The round advances only after both sides have spoken: the
	// opposition always closes a round.
	nextTurn := side.Opposite()
	nextRound := debate.CurrentRound
	if side == types.SideOpposition {
		nextRound++
	}

	if nextRound > debate.MaxRounds {
		if err := m.db.UpdateDebateStatus(debateID, types.StatusJudging, nextTurn, nextRound); err != nil {
			return nil, fmt.Errorf("failed to update debate status: %v", err)
		}
		debate.Status = types.StatusJudging

		logging.LogDebateEvent("debate_judging", debateID, map[string]interface{}{
			"rounds": debate.MaxRounds,
		})

		if err := m.runJudgment(ctx, debate); err != nil {
			// The fallback provider makes this unreachable in a
			// normally configured chain; log rather than fail the
			// submission that was already persisted.
			logging.Error("Judgment workflow failed", map[string]interface{}{
				"debate_id": debateID,
				"error":     err.Error(),
			})
		}
	} else {
		if err := m.db.UpdateDebateStatus(debateID, types.StatusActive, nextTurn, nextRound); err != nil {
			return nil, fmt.Errorf("failed to update debate status: %v", err)
		}

		otherUserID := debate.OppositionUserID
		if side == types.SideOpposition {
			otherUserID = debate.AffirmativeUserID
		}
		if m.notifier != nil {
			m.notifier.SendToUser(otherUserID, notify.EventYourTurn, map[string]interface{}{
				"debateId":     debateID,
				"currentRound": nextRound,
				"argument": map[string]interface{}{
					"content": argument.Content,
					"side":    argument.Side,
					"round":   argument.Round,
				},
			})
		}
	}

	return argument, nil
}

// Complete transitions a debate into its terminal state, stamping the
// winner and feedback and applying the fixed point economy: the winner
// gains a win and 20 points, the loser a loss and 5 points, and both
// levels are recomputed.
func (m *Machine) Complete(debateID, winnerID, judgingFeedback string) error {
	debate, err := m.db.GetDebate(debateID)
	if err != nil {
		return ErrDebateNotFound
	}

	if !debate.Status.CanTransition(types.StatusCompleted) {
		return fmt.Errorf("illegal transition from %s to %s", debate.Status, types.StatusCompleted)
	}

	if err := m.db.CompleteDebate(debateID, winnerID, judgingFeedback); err != nil {
		return fmt.Errorf("failed to complete debate: %v", err)
	}

	loserID := debate.OppositionUserID
	if winnerID == debate.OppositionUserID {
		loserID = debate.AffirmativeUserID
	}

	winner, err := m.db.UpdateUserStats(winnerID, 1, 0, winnerPoints)
	if err != nil {
		logging.Error("Failed to update winner stats", map[string]interface{}{
			"debate_id": debateID,
			"user_id":   winnerID,
			"error":     err.Error(),
		})
	} else if winner.Wins == 1 {
		if _, err := m.db.CreateAchievement(winnerID, "first_win", "Won a debate for the first time"); err != nil {
			logging.Error("Failed to grant achievement", map[string]interface{}{
				"user_id": winnerID,
				"error":   err.Error(),
			})
		}
	}

	if _, err := m.db.UpdateUserStats(loserID, 0, 1, loserPoints); err != nil {
		logging.Error("Failed to update loser stats", map[string]interface{}{
			"debate_id": debateID,
			"user_id":   loserID,
			"error":     err.Error(),
		})
	}

	logging.LogDebateEvent("debate_completed", debateID, map[string]interface{}{
		"winner_id": winnerID,
	})

	m.releaseLock(debateID)

	return nil
}
