package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/cache"
)

// Challenge is a shared-seed contest: every participant plays the exact
// same sequence of deals and events, so the leaderboard ranks skill.
type Challenge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Seed      uint32    `json:"seed"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Entry is one leaderboard row.
type Entry struct {
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
	Rank     int64   `json:"rank"`
}

type Service struct {
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

func NewService(rdb *redis.Client, secret string, ttl time.Duration) *Service {
	return &Service{rdb: rdb, secret: secret, ttl: ttl}
}

// Create mints a challenge around a fixed master seed and stores it with
// the configured expiration.
func (s *Service) Create(ctx context.Context, name, createdBy string, seed uint32) (*Challenge, error) {
	now := time.Now().UTC()
	c := &Challenge{
		ID:        uuid.New().String(),
		Name:      name,
		Seed:      seed,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal challenge: %w", err)
	}
	key := fmt.Sprintf(cache.KeyChallenge, c.ID)
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	return c, nil
}

// Get loads a challenge; nil when missing or expired.
func (s *Service) Get(ctx context.Context, id string) (*Challenge, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(cache.KeyChallenge, id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	var c Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &c, nil
}

// Join atomically counts a participant in and returns the shared seed.
func (s *Service) Join(ctx context.Context, id string) (*Challenge, int64, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if c == nil {
		return nil, 0, nil
	}

	joins, err := s.rdb.Incr(ctx, fmt.Sprintf(cache.KeyChallengeJoins, id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("count join: %w", err)
	}
	// Keep the counter's lifetime aligned with the record's.
	s.rdb.ExpireAt(ctx, fmt.Sprintf(cache.KeyChallengeJoins, id), c.ExpiresAt)
	return c, joins, nil
}

// SubmitScore records a finished game's score on the challenge board.
// A player's best score wins; worse resubmissions are ignored.
func (s *Service) SubmitScore(ctx context.Context, id, playerID string, score float64) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("challenge not found")
	}

	key := fmt.Sprintf(cache.KeyChallengeBoard, id)
	pipe := s.rdb.Pipeline()
	pipe.ZAddGT(ctx, key, redis.Z{Score: score, Member: playerID})
	pipe.ExpireAt(ctx, key, c.ExpiresAt)
	pipe.ZAddGT(ctx, cache.KeyGradeBoard, redis.Z{Score: score, Member: playerID})
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	return nil
}

// Leaderboard returns the top N entries for a challenge.
func (s *Service) Leaderboard(ctx context.Context, id string, count int64) ([]Entry, error) {
	return s.topFromSortedSet(ctx, fmt.Sprintf(cache.KeyChallengeBoard, id), count)
}

// GlobalLeaderboard returns the top N players across all challenges.
func (s *Service) GlobalLeaderboard(ctx context.Context, count int64) ([]Entry, error) {
	return s.topFromSortedSet(ctx, cache.KeyGradeBoard, count)
}

// PlayerRank returns a player's standing on a challenge board; nil when
// the player has not submitted.
func (s *Service) PlayerRank(ctx context.Context, id, playerID string) (*Entry, error) {
	key := fmt.Sprintf(cache.KeyChallengeBoard, id)

	rank, err := s.rdb.ZRevRank(ctx, key, playerID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	score, err := s.rdb.ZScore(ctx, key, playerID).Result()
	if err != nil {
		return nil, err
	}

	return &Entry{PlayerID: playerID, Score: score, Rank: rank + 1}, nil
}

// InviteToken mints a shareable signed link token for a challenge.
func (s *Service) InviteToken(c *Challenge) string {
	return MintToken(s.secret, c.ID, time.Until(c.ExpiresAt))
}

// Redeem validates an invite token and loads its challenge.
func (s *Service) Redeem(ctx context.Context, token string) (*Challenge, error) {
	id, err := ValidateToken(s.secret, token)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) topFromSortedSet(ctx context.Context, key string, count int64) ([]Entry, error) {
	results, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, count-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{
			PlayerID: member,
			Score:    z.Score,
			Rank:     int64(i + 1),
		})
	}
	return entries, nil
}
