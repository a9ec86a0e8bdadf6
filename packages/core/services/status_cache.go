package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fight-manager-api/packages/core/models"

	"github.com/redis/go-redis/v9"
)

const boardCacheKey = "fights:board"

// StatusCache stores the public board between mutations.
// A nil board with a nil error is a cache miss.
type StatusCache interface {
	GetBoard(ctx context.Context) (*models.Board, error)
	SetBoard(ctx context.Context, board *models.Board) error
	Invalidate(ctx context.Context) error
}

type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisStatusCache) GetBoard(ctx context.Context) (*models.Board, error) {
	boardJSON, err := r.client.Get(ctx, boardCacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var board models.Board
	if err := json.Unmarshal([]byte(boardJSON), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *RedisStatusCache) SetBoard(ctx context.Context, board *models.Board) error {
	boardJSON, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, boardCacheKey, string(boardJSON), r.ttl).Err()
}

func (r *RedisStatusCache) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, boardCacheKey).Err()
}

// NoopStatusCache is used when Redis is not configured; every read misses.
type NoopStatusCache struct{}

func (NoopStatusCache) GetBoard(context.Context) (*models.Board, error) { return nil, nil }
func (NoopStatusCache) SetBoard(context.Context, *models.Board) error { return nil }
func (NoopStatusCache) Invalidate(context.Context) error { return nil }
