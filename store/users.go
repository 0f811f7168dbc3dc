package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("store: not found")

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.WizardPassword,
		&u.Flags, &u.RegistrationDate, &u.LastLogin)
	return u, err
}

// GetUserByName looks up a user case-insensitively by username
// (spec.md §4.L).
func (s *Store) GetUserByName(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, wizard_password, flags, registration_date, last_login
		 FROM users WHERE username = ? COLLATE NOCASE`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: get user by name: %w", err)
	}
	return u, nil
}

// GetUserByID looks up a user by its server-assigned id.
func (s *Store) GetUserByID(ctx context.Context, userID int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, wizard_password, flags, registration_date, last_login
		 FROM users WHERE user_id = ?`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: get user by id: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new account, used both for guest autocreate on
// first logon and for registered signup (spec.md §3.7 lifecycle).
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, flags, registration_date, last_login)
		 VALUES (?, ?, 8, ?, ?)`, username, passwordHash, now, now)
	if err != nil {
		return 0, fmt.Errorf("store: create user %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: create user %q: %w", username, err)
	}
	return id, nil
}

// UpdateLastLogin stamps a user's most recent successful logon.
func (s *Store) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE user_id = ?`,
		time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("store: update last login for user %d: %w", userID, err)
	}
	return nil
}

// IsIPBanned reports whether ip currently matches an unexpired ban.
func (s *Store) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bans WHERE ip_address = ? AND (expires_at = 0 OR expires_at > ?)`,
		ip, time.Now().Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: check ip ban for %s: %w", ip, err)
	}
	return count > 0, nil
}

// IsUserBanned reports whether userID currently matches an unexpired
// ban.
func (s *Store) IsUserBanned(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bans WHERE user_id = ? AND (expires_at = 0 OR expires_at > ?)`,
		userID, time.Now().Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: check user ban for %d: %w", userID, err)
	}
	return count > 0, nil
}
