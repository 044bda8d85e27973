package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contratorealidad-backend/models"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const caseKeyPrefix = "case:"

// RedisCaseStore keeps cases as JSON values that expire after ttl of inactivity
type RedisCaseStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisClient connects to addr and verifies the connection
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisCaseStore(rdb *goredis.Client, ttl time.Duration) *RedisCaseStore {
	return &RedisCaseStore{rdb: rdb, ttl: ttl}
}

func caseKey(id uuid.UUID) string {
	return caseKeyPrefix + id.String()
}

func (s *RedisCaseStore) Create(ctx context.Context, c *models.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, caseKey(c.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis set case: %w", err)
	}
	if !ok {
		return ErrCaseExists
	}
	return nil
}

func (s *RedisCaseStore) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	data, err := s.rdb.Get(ctx, caseKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get case: %w", err)
	}
	return decodeCase(data)
}

// Save overwrites an existing case and refreshes its expiry
func (s *RedisCaseStore) Save(ctx context.Context, c *models.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetXX(ctx, caseKey(c.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis save case: %w", err)
	}
	if !ok {
		return ErrCaseNotFound
	}
	return nil
}

func (s *RedisCaseStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, caseKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete case: %w", err)
	}
	if n == 0 {
		return ErrCaseNotFound
	}
	return nil
}
