package store

import (
	"context"
	"fmt"
	"time"
)

// CreateBan inserts a ban on a user id, an IP address, or both
// (spec.md §3.7: "Bans carry either a user id or an IP string and an
// optional expiry timestamp").
func (s *Store) CreateBan(ctx context.Context, b Ban) (int64, error) {
	if b.UserID == 0 && b.IPAddress == "" {
		return 0, fmt.Errorf("store: create ban: must specify a user id or an ip address")
	}
	if b.BannedAt == 0 {
		b.BannedAt = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bans (user_id, ip_address, reason, banned_at, expires_at, banned_by_user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.IPAddress, b.Reason, b.BannedAt, b.ExpiresAt, b.BannedByUserID)
	if err != nil {
		return 0, fmt.Errorf("store: create ban: %w", err)
	}
	return res.LastInsertId()
}

// RemoveBan deletes a ban by id (server admin unban command).
func (s *Store) RemoveBan(ctx context.Context, banID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE ban_id = ?`, banID)
	if err != nil {
		return fmt.Errorf("store: remove ban %d: %w", banID, err)
	}
	return nil
}
