package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameRecord struct {
	ID          string
	PlayerID    string
	ChallengeID *string
	Seed        int64
	Round       int
	Phase       string
	Snapshot    []byte // full GameState JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

// Save upserts the full snapshot after every transition. The snapshot is
// authoritative in memory; this row is for resume and review only.
func (s *GameStore) Save(ctx context.Context, r *GameRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO games (id, player_id, challenge_id, seed, round, phase, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			round = EXCLUDED.round,
			phase = EXCLUDED.phase,
			snapshot = EXCLUDED.snapshot,
			updated_at = now()
	`, r.ID, r.PlayerID, r.ChallengeID, r.Seed, r.Round, r.Phase, r.Snapshot)
	return err
}

func (s *GameStore) Get(ctx context.Context, id string) (*GameRecord, error) {
	r := &GameRecord{}
	err := s.db.QueryRow(ctx, `
		SELECT id, player_id, challenge_id, seed, round, phase, snapshot, created_at, updated_at
		FROM games WHERE id = $1
	`, id).Scan(
		&r.ID, &r.PlayerID, &r.ChallengeID, &r.Seed, &r.Round, &r.Phase,
		&r.Snapshot, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *GameStore) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*GameRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, player_id, challenge_id, seed, round, phase, snapshot, created_at, updated_at
		FROM games WHERE player_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GameRecord
	for rows.Next() {
		r := &GameRecord{}
		if err := rows.Scan(
			&r.ID, &r.PlayerID, &r.ChallengeID, &r.Seed, &r.Round, &r.Phase,
			&r.Snapshot, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *GameStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	return err
}
