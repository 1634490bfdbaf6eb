package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const profilesTable = "profiles"

// profileRepo implements ProfileRepo as one JSON document per user.
type profileRepo struct {
	db      *sql.DB
	dialect string
}

// Load returns the stored profile, or nil if none exists.
func (r *profileRepo) Load(ctx context.Context, userID string) (*ProfileSnapshot, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("data").
		From(entsql.Table(profilesTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var snap ProfileSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &snap, nil
}

// Save inserts or replaces the profile.
func (r *profileRepo) Save(ctx context.Context, snap *ProfileSnapshot) error {
	if snap.UserID == "" {
		return errors.New("save profile: empty user id")
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(profilesTable).
		Columns("user_id", "data", "updated_at").
		Values(snap.UserID, string(data), snap.UpdatedAt.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Delete removes the profile.
func (r *profileRepo) Delete(ctx context.Context, userID string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(profilesTable).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
