package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetPropByCRC32 looks up a registered prop by its asset CRC32, the
// uniqueness key spec.md §3.7 names for Prop rows.
func (s *Store) GetPropByCRC32(ctx context.Context, crc32 uint32) (Prop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT prop_id, crc32, name, flags, width, height, file_path, created_at
		 FROM props WHERE crc32 = ?`, crc32)
	var p Prop
	var crc int64
	err := row.Scan(&p.PropID, &crc, &p.Name, &p.Flags, &p.Width, &p.Height, &p.FilePath, &p.CreatedAt)
	p.CRC32 = uint32(crc)
	if errors.Is(err, sql.ErrNoRows) {
		return Prop{}, ErrNotFound
	}
	if err != nil {
		return Prop{}, fmt.Errorf("store: get prop by crc32 %d: %w", crc32, err)
	}
	return p, nil
}

// RegisterProp inserts a new prop, ignoring the insert if its CRC32
// is already registered (props are identified by asset content, not
// by who uploaded them).
func (s *Store) RegisterProp(ctx context.Context, p Prop) (int64, error) {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO props (crc32, name, flags, width, height, file_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(crc32) DO NOTHING`,
		p.CRC32, p.Name, p.Flags, p.Width, p.Height, p.FilePath, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("store: register prop %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		existing, getErr := s.GetPropByCRC32(ctx, p.CRC32)
		if getErr != nil {
			return 0, fmt.Errorf("store: register prop %q: %w", p.Name, err)
		}
		return existing.PropID, nil
	}
	return id, nil
}
