package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"porest/backend/internal/calendar"
	"porest/backend/pkg/redis"
)

const (
	visibilityKeyPrefix = "calendar:visibility:"
	visibilityTTL       = 30 * 24 * time.Hour
)

// VisibilityStore 按用户保存日历显示状态，后写覆盖先写
type VisibilityStore interface {
	// Load 读取显示状态，不存在时 ok 为 false
	Load(ctx context.Context, userID string) (v calendar.Visibility, ok bool, err error)
	Save(ctx context.Context, userID string, v calendar.Visibility) error
}

// ── Redis 实现 ──

type redisVisibilityStore struct {
	client *redis.Client
}

// NewRedisVisibilityStore 以 Redis 保存显示状态（30 天未修改自动过期）
func NewRedisVisibilityStore(client *redis.Client) VisibilityStore {
	return &redisVisibilityStore{client: client}
}

func (s *redisVisibilityStore) Load(ctx context.Context, userID string) (calendar.Visibility, bool, error) {
	var v calendar.Visibility
	if err := s.client.GetJSON(ctx, visibilityKeyPrefix+userID, &v); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return calendar.Visibility{}, false, nil
		}
		return calendar.Visibility{}, false, err
	}
	return v, true, nil
}

func (s *redisVisibilityStore) Save(ctx context.Context, userID string, v calendar.Visibility) error {
	return s.client.SetJSON(ctx, visibilityKeyPrefix+userID, v, visibilityTTL)
}

// ── 进程内实现（Redis 不可用时回退，重启即丢失） ──

type memoryVisibilityStore struct {
	mu    sync.Mutex
	state map[string]calendar.Visibility
}

// NewMemoryVisibilityStore 创建进程内显示状态存储
func NewMemoryVisibilityStore() VisibilityStore {
	return &memoryVisibilityStore{state: make(map[string]calendar.Visibility)}
}

func (s *memoryVisibilityStore) Load(_ context.Context, userID string) (calendar.Visibility, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[userID]
	return v, ok, nil
}

func (s *memoryVisibilityStore) Save(_ context.Context, userID string, v calendar.Visibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[userID] = v
	return nil
}
