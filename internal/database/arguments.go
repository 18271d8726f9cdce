package database

import (
	"fmt"
	"time"

	"github.com/neo/debatearena_backend/internal/types"
)

// Argument represents a single submitted argument. Arguments are
// append-only; they are never updated or deleted.
type Argument struct {
	ID          int64      `json:"id"`
	DebateID    string     `json:"debate_id"`
	UserID      string     `json:"user_id"`
	Round       int        `json:"round"`
	Side        types.Side `json:"side"`
	Content     string     `json:"content"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// CreateArgument appends a new argument and returns its id
func (d *Database) CreateArgument(argument *Argument) (int64, error) {
	query := `INSERT INTO arguments (debate_id, user_id, round, side, content, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := d.db.Exec(
		query,
		argument.DebateID,
		argument.UserID,
		argument.Round,
		argument.Side.String(),
		argument.Content,
		argument.SubmittedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create argument: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get argument id: %v", err)
	}
	argument.ID = id

	return id, nil
}

// GetArgumentsByDebate returns all arguments for a debate ordered by
// round ascending with the affirmative argument first within each round
func (d *Database) GetArgumentsByDebate(debateID string) ([]*Argument, error) {
	query := `SELECT id, debate_id, user_id, round, side, content, submitted_at
		FROM arguments
		WHERE debate_id = ?
		ORDER BY round ASC, CASE side WHEN 'affirmative' THEN 0 ELSE 1 END ASC`

	rows, err := d.db.Query(query, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query arguments: %v", err)
	}
	defer rows.Close()

	var arguments []*Argument
	for rows.Next() {
		var arg Argument
		var side string
		err := rows.Scan(&arg.ID, &arg.DebateID, &arg.UserID, &arg.Round, &side, &arg.Content, &arg.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan argument: %v", err)
		}
		arg.Side = types.Side(side)
		arguments = append(arguments, &arg)
	}

	return arguments, rows.Err()
}
