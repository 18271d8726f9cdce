package database

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a user in the database. Stats (wins, losses, debates,
// points, level) are mutated only by debate completion.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Don't include in JSON
	DisplayName  string    `json:"display_name"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Debates      int       `json:"debates"`
	Points       int       `json:"points"`
	Level        int       `json:"level"`
	AvatarID     int       `json:"avatar_id"`
	CreatedAt    time.Time `json:"created_at"`
}

const userColumns = `id, username, password_hash, display_name, wins, losses, debates, points, level, avatar_id, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName,
		&user.Wins, &user.Losses, &user.Debates, &user.Points, &user.Level,
		&user.AvatarID, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// CreateUser creates a new user with a hashed password
func (d *Database) CreateUser(user *User, password string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	user.PasswordHash = string(passwordHash)

	if user.Level == 0 {
		user.Level = 1
	}
	if user.AvatarID == 0 {
		user.AvatarID = 1
	}

	query := `INSERT INTO users (
		id, username, password_hash, display_name, wins, losses, debates, points, level, avatar_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = d.db.Exec(
		query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.DisplayName,
		user.Wins,
		user.Losses,
		user.Debates,
		user.Points,
		user.Level,
		user.AvatarID,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}

	return nil
}

// GetUserByID gets a user by ID
func (d *Database) GetUserByID(id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(d.db.QueryRow(query, id))
}

// GetUserByUsername gets a user by username
func (d *Database) GetUserByUsername(username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(d.db.QueryRow(query, username))
}

// VerifyPassword checks a username/password pair and returns the user on success
func (d *Database) VerifyPassword(username, password string) (*User, error) {
	user, err := d.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid password")
	}

	return user, nil
}

// UpdateUserStats applies stat deltas to a user and recomputes their
// level as max(1, points/100+1). Returns the updated user.
func (d *Database) UpdateUserStats(userID string, wins, losses, points int) (*User, error) {
	user, err := d.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.Wins += wins
	user.Losses += losses
	user.Debates += wins + losses
	user.Points += points

	level := user.Points/100 + 1
	if level < 1 {
		level = 1
	}
	user.Level = level

	query := `UPDATE users SET wins = ?, losses = ?, debates = ?, points = ?, level = ? WHERE id = ?`
	_, err = d.db.Exec(query, user.Wins, user.Losses, user.Debates, user.Points, user.Level, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %v", err)
	}

	return user, nil
}
