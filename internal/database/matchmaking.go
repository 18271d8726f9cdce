package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueEntry represents a pending matchmaking request. At most one entry
// exists per user; queue order is joined_at ascending (FIFO).
type QueueEntry struct {
	UserID            string    `json:"user_id"`
	MinLevel          int       `json:"min_level"`
	MaxLevel          int       `json:"max_level"`
	PreferredTopicIDs []int64   `json:"preferred_topic_ids"`
	JoinedAt          time.Time `json:"joined_at"`
}

// AddToMatchmakingQueue inserts or replaces the queue entry for a user.
// The entry's JoinedAt is stored as given so a requeued entry keeps its
// original position.
func (d *Database) AddToMatchmakingQueue(entry *QueueEntry) error {
	preferred, err := json.Marshal(entry.PreferredTopicIDs)
	if err != nil {
		return fmt.Errorf("failed to encode preferred topics: %v", err)
	}

	query := `INSERT INTO matchmaking_queue (user_id, min_level, max_level, preferred_topic_ids, joined_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			min_level = excluded.min_level,
			max_level = excluded.max_level,
			preferred_topic_ids = excluded.preferred_topic_ids,
			joined_at = excluded.joined_at`

	_, err = d.db.Exec(query, entry.UserID, entry.MinLevel, entry.MaxLevel, string(preferred), entry.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add to matchmaking queue: %v", err)
	}

	return nil
}

// RemoveFromMatchmakingQueue removes a user's entry if present. Removing
// an absent user is a no-op since disconnects race with explicit leaves.
func (d *Database) RemoveFromMatchmakingQueue(userID string) error {
	_, err := d.db.Exec(`DELETE FROM matchmaking_queue WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to remove from matchmaking queue: %v", err)
	}
	return nil
}

// GetMatchmakingQueue returns all queue entries in FIFO order
func (d *Database) GetMatchmakingQueue() ([]*QueueEntry, error) {
	rows, err := d.db.Query(
		`SELECT user_id, min_level, max_level, preferred_topic_ids, joined_at
		FROM matchmaking_queue ORDER BY joined_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchmaking queue: %v", err)
	}
	defer rows.Close()

	var queue []*QueueEntry
	for rows.Next() {
		var entry QueueEntry
		var preferred string
		if err := rows.Scan(&entry.UserID, &entry.MinLevel, &entry.MaxLevel, &preferred, &entry.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %v", err)
		}
		if err := json.Unmarshal([]byte(preferred), &entry.PreferredTopicIDs); err != nil {
			return nil, fmt.Errorf("failed to decode preferred topics: %v", err)
		}
		queue = append(queue, &entry)
	}

	return queue, rows.Err()
}
