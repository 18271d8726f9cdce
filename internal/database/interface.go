package database

import (
	"github.com/neo/debatearena_backend/internal/types"
)

// DatabaseInterface defines the interface for database operations
type DatabaseInterface interface {
	Close() error

	// User management
	CreateUser(user *User, password string) error
	GetUserByID(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	VerifyPassword(username, password string) (*User, error)
	UpdateUserStats(userID string, wins, losses, points int) (*User, error)

	// Topics
	CreateTopic(title string, difficulty int) (*Topic, error)
	GetTopic(id int64) (*Topic, error)
	GetTopics() ([]*Topic, error)

	// Debates
	CreateDebate(debate *Debate) error
	GetDebate(id string) (*Debate, error)
	GetDebatesByUser(userID string, limit int) ([]*Debate, error)
	UpdateDebateStatus(id string, status types.DebateStatus, turn types.Side, round int) error
	CompleteDebate(id, winnerID, judgingFeedback string) error

	// Arguments
	CreateArgument(argument *Argument) (int64, error)
	GetArgumentsByDebate(debateID string) ([]*Argument, error)

	// Achievements
	CreateAchievement(userID, achievementType, description string) (*Achievement, error)
	GetAchievementsByUser(userID string) ([]*Achievement, error)

	// Matchmaking queue
	AddToMatchmakingQueue(entry *QueueEntry) error
	RemoveFromMatchmakingQueue(userID string) error
	GetMatchmakingQueue() ([]*QueueEntry, error)

	// Migration runner
	RunMigrations() error
}

// Ensure Database implements DatabaseInterface
var _ DatabaseInterface = (*Database)(nil)
