package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
	rdb "github.com/ReqCrypto/sol-meme-scanner/internal/stores/redis"
)

// Store keeps the latest cycle under a single key, so the read API survives
// process restarts. One key, overwritten per cycle, never a history.
type Store struct {
	rdb *rdb.Client
	key string
}

func New(client *rdb.Client, prefix string) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = "sms:"
	}
	return &Store{rdb: client, key: prefix + "cycle:latest"}, nil
}

func (s *Store) Put(ctx context.Context, res *domain.CycleResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle result: %w", err)
	}

	if err = s.rdb.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context) (*domain.CycleResult, error) {
	payload, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return &domain.CycleResult{Candidates: []domain.Candidate{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", s.key, err)
	}

	var res domain.CycleResult
	if err = json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cycle result: %w", err)
	}
	return &res, nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
