package database

import (
	"database/sql"
	"fmt"
)

// Topic represents a debate topic. Topics are immutable once created;
// matchmaking selects them but never mutates them.
type Topic struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Difficulty int    `json:"difficulty"`
}

// CreateTopic inserts a new topic and returns it
func (d *Database) CreateTopic(title string, difficulty int) (*Topic, error) {
	result, err := d.db.Exec(`INSERT INTO topics (title, difficulty) VALUES (?, ?)`, title, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get topic id: %v", err)
	}

	return &Topic{ID: id, Title: title, Difficulty: difficulty}, nil
}

// GetTopic gets a topic by ID
func (d *Database) GetTopic(id int64) (*Topic, error) {
	var topic Topic
	err := d.db.QueryRow(`SELECT id, title, difficulty FROM topics WHERE id = ?`, id).
		Scan(&topic.ID, &topic.Title, &topic.Difficulty)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("topic not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get topic: %v", err)
	}
	return &topic, nil
}

// GetTopics returns all topics
func (d *Database) GetTopics() ([]*Topic, error) {
	rows, err := d.db.Query(`SELECT id, title, difficulty FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %v", err)
	}
	defer rows.Close()

	var topics []*Topic
	for rows.Next() {
		var topic Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.Difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %v", err)
		}
		topics = append(topics, &topic)
	}

	return topics, rows.Err()
}
