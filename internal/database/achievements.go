package database

import (
	"fmt"
	"time"
)

// Achievement is an append-only record granted to a user
type Achievement struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// CreateAchievement grants an achievement to a user
func (d *Database) CreateAchievement(userID, achievementType, description string) (*Achievement, error) {
	now := time.Now().UTC()
	result, err := d.db.Exec(
		`INSERT INTO achievements (user_id, type, description, earned_at) VALUES (?, ?, ?, ?)`,
		userID, achievementType, description, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement id: %v", err)
	}

	return &Achievement{
		ID:          id,
		UserID:      userID,
		Type:        achievementType,
		Description: description,
		EarnedAt:    now,
	}, nil
}

// GetAchievementsByUser returns a user's achievements, newest first
func (d *Database) GetAchievementsByUser(userID string) ([]*Achievement, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, type, description, earned_at FROM achievements
		WHERE user_id = ? ORDER BY earned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %v", err)
	}
	defer rows.Close()

	var achievements []*Achievement
	for rows.Next() {
		var achievement Achievement
		err := rows.Scan(&achievement.ID, &achievement.UserID, &achievement.Type,
			&achievement.Description, &achievement.EarnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %v", err)
		}
		achievements = append(achievements, &achievement)
	}

	return achievements, rows.Err()
}
