package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neo/debatearena_backend/internal/types"
)

// Debate represents a debate between two users. The row is mutated only
// by the debate state machine; once status reaches completed it is
// immutable.
type Debate struct {
	ID                string             `json:"id"`
	TopicID           int64              `json:"topic_id"`
	AffirmativeUserID string             `json:"affirmative_user_id"`
	OppositionUserID  string             `json:"opposition_user_id"`
	Status            types.DebateStatus `json:"status"`
	CurrentTurn       types.Side         `json:"current_turn"`
	CurrentRound      int                `json:"current_round"`
	MaxRounds         int                `json:"max_rounds"`
	TimePerTurn       int                `json:"time_per_turn"`
	WinnerID          *string            `json:"winner_id,omitempty"`
	JudgingFeedback   *string            `json:"judging_feedback,omitempty"`
	BackgroundIndex   int                `json:"background_index"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           *time.Time         `json:"end_time,omitempty"`
}

const debateColumns = `id, topic_id, affirmative_user_id, opposition_user_id, status, current_turn,
	current_round, max_rounds, time_per_turn, winner_id, judging_feedback, background_index,
	start_time, end_time`

func scanDebate(scanner interface {
	Scan(dest ...interface{}) error
}) (*Debate, error) {
	var debate Debate
	var status, turn string
	err := scanner.Scan(
		&debate.ID, &debate.TopicID, &debate.AffirmativeUserID, &debate.OppositionUserID,
		&status, &turn, &debate.CurrentRound, &debate.MaxRounds, &debate.TimePerTurn,
		&debate.WinnerID, &debate.JudgingFeedback, &debate.BackgroundIndex,
		&debate.StartTime, &debate.EndTime,
	)
	if err != nil {
		return nil, err
	}
	debate.Status = types.DebateStatus(status)
	debate.CurrentTurn = types.Side(turn)
	return &debate, nil
}

// CreateDebate inserts a new debate row
func (d *Database) CreateDebate(debate *Debate) error {
	query := `INSERT INTO debates (
		id, topic_id, affirmative_user_id, opposition_user_id, status, current_turn,
		current_round, max_rounds, time_per_turn, background_index, start_time
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.Exec(
		query,
		debate.ID,
		debate.TopicID,
		debate.AffirmativeUserID,
		debate.OppositionUserID,
		debate.Status.String(),
		debate.CurrentTurn.String(),
		debate.CurrentRound,
		debate.MaxRounds,
		debate.TimePerTurn,
		debate.BackgroundIndex,
		debate.StartTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create debate: %v", err)
	}

	return nil
}

// GetDebate gets a debate by ID
func (d *Database) GetDebate(id string) (*Debate, error) {
	query := `SELECT ` + debateColumns + ` FROM debates WHERE id = ?`
	debate, err := scanDebate(d.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("debate not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get debate: %v", err)
	}
	return debate, nil
}

// GetDebatesByUser returns the most recent debates a user participated
// in, newest first. A limit of 0 returns all of them.
func (d *Database) GetDebatesByUser(userID string, limit int) ([]*Debate, error) {
	query := `SELECT ` + debateColumns + ` FROM debates
		WHERE affirmative_user_id = ? OR opposition_user_id = ?
		ORDER BY start_time DESC`
	args := []interface{}{userID, userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query debates: %v", err)
	}
	defer rows.Close()

	var debates []*Debate
	for rows.Next() {
		debate, err := scanDebate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debate: %v", err)
		}
		debates = append(debates, debate)
	}

	return debates, rows.Err()
}

// UpdateDebateStatus updates the status, current turn and current round
// of a debate
func (d *Database) UpdateDebateStatus(id string, status types.DebateStatus, turn types.Side, round int) error {
	query := `UPDATE debates SET status = ?, current_turn = ?, current_round = ? WHERE id = ?`
	result, err := d.db.Exec(query, status.String(), turn.String(), round, id)
	if err != nil {
		return fmt.Errorf("failed to update debate status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("debate not found")
	}
	return nil
}

// CompleteDebate marks a debate as completed with the winner and
// judging feedback, stamping the end time
func (d *Database) CompleteDebate(id, winnerID, judgingFeedback string) error {
	query := `UPDATE debates SET status = ?, winner_id = ?, judging_feedback = ?, end_time = ? WHERE id = ?`
	result, err := d.db.Exec(query, types.StatusCompleted.String(), winnerID, judgingFeedback, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete debate: %v", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("debate not found")
	}
	return nil
}
