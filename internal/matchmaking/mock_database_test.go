package matchmaking

import (
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockDatabase is a testify mock of database.DatabaseInterface
type MockDatabase struct {
	mock.Mock
}

var _ database.DatabaseInterface = (*MockDatabase)(nil)

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) CreateUser(user *database.User, password string) error {
	args := m.Called(user, password)
	return args.Error(0)
}

func (m *MockDatabase) GetUserByID(id string) (*database.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.User), args.Error(1)
}

func (m *MockDatabase) GetUserByUsername(username string) (*database.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.User), args.Error(1)
}

func (m *MockDatabase) VerifyPassword(username, password string) (*database.User, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.User), args.Error(1)
}

func (m *MockDatabase) UpdateUserStats(userID string, wins, losses, points int) (*database.User, error) {
	args := m.Called(userID, wins, losses, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.User), args.Error(1)
}

func (m *MockDatabase) CreateTopic(title string, difficulty int) (*database.Topic, error) {
	args := m.Called(title, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Topic), args.Error(1)
}

func (m *MockDatabase) GetTopic(id int64) (*database.Topic, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Topic), args.Error(1)
}

func (m *MockDatabase) GetTopics() ([]*database.Topic, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.Topic), args.Error(1)
}

func (m *MockDatabase) CreateDebate(debate *database.Debate) error {
	args := m.Called(debate)
	return args.Error(0)
}

func (m *MockDatabase) GetDebate(id string) (*database.Debate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Debate), args.Error(1)
}

func (m *MockDatabase) GetDebatesByUser(userID string, limit int) ([]*database.Debate, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.Debate), args.Error(1)
}

func (m *MockDatabase) UpdateDebateStatus(id string, status types.DebateStatus, turn types.Side, round int) error {
	args := m.Called(id, status, turn, round)
	return args.Error(0)
}

func (m *MockDatabase) CompleteDebate(id, winnerID, judgingFeedback string) error {
	args := m.Called(id, winnerID, judgingFeedback)
	return args.Error(0)
}

func (m *MockDatabase) CreateArgument(argument *database.Argument) (int64, error) {
	args := m.Called(argument)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatabase) GetArgumentsByDebate(debateID string) ([]*database.Argument, error) {
	args := m.Called(debateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.Argument), args.Error(1)
}

func (m *MockDatabase) CreateAchievement(userID, achievementType, description string) (*database.Achievement, error) {
	args := m.Called(userID, achievementType, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Achievement), args.Error(1)
}

func (m *MockDatabase) GetAchievementsByUser(userID string) ([]*database.Achievement, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.Achievement), args.Error(1)
}

func (m *MockDatabase) AddToMatchmakingQueue(entry *database.QueueEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockDatabase) RemoveFromMatchmakingQueue(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockDatabase) GetMatchmakingQueue() ([]*database.QueueEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*database.QueueEntry), args.Error(1)
}

func (m *MockDatabase) RunMigrations() error {
	args := m.Called()
	return args.Error(0)
}
