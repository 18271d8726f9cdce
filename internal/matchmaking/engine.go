// Package matchmaking maintains the FIFO queue of users waiting for an
// opponent and pairs them into debates.
package matchmaking

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/debate"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/notify"
)

const (
	// recentDebateWindow is how many of each user's most recent debates
	// are inspected to avoid repeating topics
	recentDebateWindow = 5

	defaultMinLevel = 1
	defaultMaxLevel = 100

	// backgroundCount matches the number of arena backgrounds the client ships
	backgroundCount = 4
)

// Title and difficulty synthesized when the topic table is empty
const (
	defaultTopicTitle      = "Should AI be regulated?"
	defaultTopicDifficulty = 3
)

// Options are the preferences carried by a queue entry. Level bounds
// and preferred topics are recorded but pairing is strict FIFO; see the
// engine documentation.
type Options struct {
	MinLevel          int
	MaxLevel          int
	PreferredTopicIDs []int64
}

// Notifier pushes matchmaking events. *notify.Hub satisfies it.
type Notifier interface {
	SendToUser(userID string, eventType string, payload interface{})
	BroadcastMatchmaking(payload interface{})
}

// DebateCreator creates the debate for a pairing. *debate.Machine
// satisfies it.
type DebateCreator interface {
	Create(topicID int64, affirmativeUserID, oppositionUserID string, maxRounds, timePerTurn, backgroundIndex int) (*database.Debate, error)
}

// Engine pairs queued users. Pairing is strict FIFO by join time: level
// bounds are stored but deliberately not re-validated between the two
// popped entries, matching the product's current behavior. A single
// mutex serializes join, leave and pairing so a user can never be
// double-paired or left behind by a concurrent leave.
type Engine struct {
	db       database.DatabaseInterface
	notifier Notifier
	creator  DebateCreator

	mu  sync.Mutex
	rng *rand.Rand

	maxRounds   int
	timePerTurn int
}

// NewEngine creates a matchmaking engine
func NewEngine(db database.DatabaseInterface, notifier Notifier, creator DebateCreator) *Engine {
	return &Engine{
		db:          db,
		notifier:    notifier,
		creator:     creator,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxRounds:   debate.DefaultMaxRounds,
		timePerTurn: debate.DefaultTimePerTurn,
	}
}

// Join adds a user to the queue, replacing any existing entry for the
// same user, then attempts a pairing. Queue size is broadcast to all
// matchmaking subscribers.
func (e *Engine) Join(userID string, opts Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if opts.MinLevel <= 0 {
		opts.MinLevel = defaultMinLevel
	}
	if opts.MaxLevel <= 0 {
		opts.MaxLevel = defaultMaxLevel
	}
	preferred := opts.PreferredTopicIDs
	if preferred == nil {
		preferred = []int64{}
	}

	entry := &database.QueueEntry{
		UserID:            userID,
		MinLevel:          opts.MinLevel,
		MaxLevel:          opts.MaxLevel,
		PreferredTopicIDs: preferred,
		JoinedAt:          time.Now().UTC(),
	}
	if err := e.db.AddToMatchmakingQueue(entry); err != nil {
		return fmt.Errorf("failed to join matchmaking: %v", err)
	}

	logging.LogMatchmakingEvent("queue_joined", userID, map[string]interface{}{
		"min_level": opts.MinLevel,
		"max_level": opts.MaxLevel,
	})

	e.broadcastQueueSizeLocked()

	return e.tryPairLocked()
}

// Leave removes a user from the queue. Removing an absent user is a
// no-op because disconnects race with explicit leaves.
func (e *Engine) Leave(userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.db.RemoveFromMatchmakingQueue(userID); err != nil {
		return fmt.Errorf("failed to leave matchmaking: %v", err)
	}

	logging.LogMatchmakingEvent("queue_left", userID, nil)

	e.broadcastQueueSizeLocked()
	return nil
}

// TryPair attempts one pairing if at least two users are waiting
func (e *Engine) TryPair() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tryPairLocked()
}

// broadcastQueueSizeLocked pushes the current queue size to subscribers.
// Callers hold e.mu.
func (e *Engine) broadcastQueueSizeLocked() {
	queue, err := e.db.GetMatchmakingQueue()
	if err != nil {
		logging.Error("Failed to read matchmaking queue", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if e.notifier != nil {
		e.notifier.BroadcastMatchmaking(map[string]interface{}{
			"queueSize": len(queue),
		})
	}
}

// tryPairLocked pops the two earliest entries, selects a topic, assigns
// sides by coin flip and creates the debate. If debate creation fails
// both entries are requeued with their original join times so no user
// is lost. Callers hold e.mu.
func (e *Engine) tryPairLocked() error {
	queue, err := e.db.GetMatchmakingQueue()
	if err != nil {
		return fmt.Errorf("failed to read matchmaking queue: %v", err)
	}
	if len(queue) < 2 {
		return nil
	}

	first, second := queue[0], queue[1]

	if err := e.db.RemoveFromMatchmakingQueue(first.UserID); err != nil {
		return fmt.Errorf("failed to dequeue user: %v", err)
	}
	if err := e.db.RemoveFromMatchmakingQueue(second.UserID); err != nil {
		// Put the first user back rather than losing them
		e.requeue(first)
		return fmt.Errorf("failed to dequeue user: %v", err)
	}

	topic, err := e.selectTopic(first.UserID, second.UserID)
	if err != nil {
		e.requeue(first, second)
		return err
	}

	// Uniform coin flip for side assignment, independent of join order
	affirmativeID, oppositionID := first.UserID, second.UserID
	if e.rng.Intn(2) == 1 {
		affirmativeID, oppositionID = second.UserID, first.UserID
	}

	created, err := e.creator.Create(topic.ID, affirmativeID, oppositionID,
		e.maxRounds, e.timePerTurn, 1+e.rng.Intn(backgroundCount))
	if err != nil {
		// Requeue both entries with their original join times so they
		// keep their place in the queue.
		e.requeue(first, second)
		logging.Error("Pairing failed, users requeued", map[string]interface{}{
			"user1": first.UserID,
			"user2": second.UserID,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to create debate for pairing: %v", err)
	}

	logging.LogMatchmakingEvent("match_found", affirmativeID, map[string]interface{}{
		"debate_id": created.ID,
		"opponent":  oppositionID,
		"topic_id":  topic.ID,
	})

	if e.notifier != nil {
		e.notifier.SendToUser(first.UserID, notify.EventMatchFound, map[string]interface{}{
			"debateId":      created.ID,
			"opponentId":    second.UserID,
			"isAffirmative": first.UserID == affirmativeID,
			"topic":         topic,
		})
		e.notifier.SendToUser(second.UserID, notify.EventMatchFound, map[string]interface{}{
			"debateId":      created.ID,
			"opponentId":    first.UserID,
			"isAffirmative": second.UserID == affirmativeID,
			"topic":         topic,
		})
	}

	e.broadcastQueueSizeLocked()
	return nil
}

// requeue restores queue entries after a failed pairing
func (e *Engine) requeue(entries ...*database.QueueEntry) {
	for _, entry := range entries {
		if err := e.db.AddToMatchmakingQueue(entry); err != nil {
			logging.Error("Failed to requeue user", map[string]interface{}{
				"user_id": entry.UserID,
				"error":   err.Error(),
			})
		}
	}
}

// selectTopic picks a topic for a pairing. Topics either user debated in
// their last few debates are excluded when an alternative exists; if the
// topic table is empty a default topic is synthesized.
func (e *Engine) selectTopic(userID1, userID2 string) (*database.Topic, error) {
	topics, err := e.db.GetTopics()
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %v", err)
	}

	if len(topics) == 0 {
		topic, err := e.db.CreateTopic(defaultTopicTitle, defaultTopicDifficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to create default topic: %v", err)
		}
		return topic, nil
	}

	excluded := make(map[int64]struct{})
	for _, userID := range []string{userID1, userID2} {
		recent, err := e.db.GetDebatesByUser(userID, recentDebateWindow)
		if err != nil {
			logging.Error("Failed to load recent debates", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			continue
		}
		for _, d := range recent {
			excluded[d.TopicID] = struct{}{}
		}
	}

	pool := make([]*database.Topic, 0, len(topics))
	for _, topic := range topics {
		if _, ok := excluded[topic.ID]; !ok {
			pool = append(pool, topic)
		}
	}
	// When every topic was recently used, fall back to the full list
	if len(pool) == 0 {
		pool = topics
	}

	return pool[e.rng.Intn(len(pool))], nil
}
