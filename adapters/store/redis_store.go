package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// retention is how long challenge rows are kept around after issuance.
// Expiry of a code is enforced by comparing ExpiresAt, not by key TTL, so
// the TTL here is storage hygiene only. It must comfortably exceed the OTC
// TTL and the rate-limit window.
const retention = 24 * time.Hour

// RedisStore is a Redis implementation of the ChallengeStore interface.
//
// Layout:
//   - warden:challenge:<token>  JSON challenge record, TTL = retention
//   - warden:used:<token>       set exactly once via SETNX, TTL = retention
//   - warden:issued:<contact>   ZSET of tokens scored by issuance millis
//
// The used flag lives in its own key so that redemption is a single SETNX,
// which Redis arbitrates atomically across concurrent verifiers.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis challenge store.
func NewRedisStore(client *redis.Client) ports.ChallengeStore {
	return &RedisStore{
		client: client,
		prefix: "warden:",
	}
}

type challengeRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Contact   string    `json:"contact"`
	CodeHash  string    `json:"code_hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisStore) challengeKey(token string) string {
	return s.prefix + "challenge:" + token
}

func (s *RedisStore) usedKey(token string) string {
	return s.prefix + "used:" + token
}

func (s *RedisStore) issuedKey(contact string) string {
	return s.prefix + "issued:" + contact
}

// Create inserts the challenge record and indexes it in the per-contact
// issuance ZSET.
func (s *RedisStore) Create(ctx context.Context, challenge *core.Challenge) error {
	rec := challengeRecord{
		Token:     challenge.Token,
		UserID:    challenge.UserID,
		Contact:   challenge.Contact,
		CodeHash:  challenge.CodeHash,
		CreatedAt: challenge.CreatedAt,
		ExpiresAt: challenge.ExpiresAt,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	issued := s.issuedKey(challenge.Contact)
	cutoff := challenge.CreatedAt.Add(-retention).UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.challengeKey(challenge.Token), payload, retention)
	pipe.ZAdd(ctx, issued, redis.Z{
		Score:  float64(challenge.CreatedAt.UnixMilli()),
		Member: challenge.Token,
	})
	pipe.ZRemRangeByScore(ctx, issued, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.Expire(ctx, issued, retention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// FetchByToken returns the challenge for the given token.
func (s *RedisStore) FetchByToken(ctx context.Context, token string) (*core.Challenge, error) {
	data, err := s.client.Get(ctx, s.challengeKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}

	var rec challengeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	used, err := s.client.Exists(ctx, s.usedKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check used flag: %w", err)
	}

	return &core.Challenge{
		Token:     rec.Token,
		UserID:    rec.UserID,
		Contact:   rec.Contact,
		CodeHash:  rec.CodeHash,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		Used:      used > 0,
	}, nil
}

// MarkUsed sets the used flag with SETNX. Redis executes SETNX atomically,
// so exactly one of any number of concurrent callers wins; the rest see
// core.ErrAlreadyUsed.
func (s *RedisStore) MarkUsed(ctx context.Context, token string) error {
	exists, err := s.client.Exists(ctx, s.challengeKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to check challenge: %w", err)
	}
	if exists == 0 {
		return core.ErrNotFound
	}

	ok, err := s.client.SetNX(ctx, s.usedKey(token), "1", retention).Result()
	if err != nil {
		return fmt.Errorf("failed to mark challenge used: %w", err)
	}
	if !ok {
		return core.ErrAlreadyUsed
	}
	return nil
}

// CountRecent counts issuances for the contact since the cutoff using the
// issuance ZSET.
func (s *RedisStore) CountRecent(ctx context.Context, contact string, since time.Time) (int, error) {
	min := strconv.FormatInt(since.UnixMilli(), 10)
	n, err := s.client.ZCount(ctx, s.issuedKey(contact), min, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count recent challenges: %w", err)
	}
	return int(n), nil
}
