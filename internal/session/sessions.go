package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore keeps State between requests. Loading an unknown id yields a
// fresh state.
type SessionStore interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state   *State
	touched time.Time
}

// MemorySessionStore keeps sessions in process memory and forgets those idle
// for longer than the TTL.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = constants.SessionConfig.DefaultTTL
	}
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)

	entry, ok := m.entries[id]
	if !ok {
		return NewState(), nil
	}
	entry.touched = now
	m.entries[id] = entry
	return entry.state.Clone(), nil
}

func (m *MemorySessionStore) Save(_ context.Context, id string, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{state: st.Clone(), touched: m.now()}
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Len reports the number of live sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictLocked(m.now())
	return len(m.entries)
}

func (m *MemorySessionStore) evictLocked(now time.Time) {
	for id, entry := range m.entries {
		if now.Sub(entry.touched) > m.ttl {
			delete(m.entries, id)
		}
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisSessionStore keeps each session as a JSON value with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSessionStore(ctx context.Context, cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisSessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.SessionConfig.DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.NewStoreError("failed to connect to Redis", "ping", cfg.Addr, err)
	}

	logger.Info("Redis session store connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &RedisSessionStore{client: client, ttl: ttl, logger: logger}, nil
}

func sessionKey(id string) string {
	return constants.SessionConfig.KeyPrefix + id
}

func (r *RedisSessionStore) Load(ctx context.Context, id string) (*State, error) {
	key := sessionKey(id)
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return NewState(), nil
	}
	if err != nil {
		r.logger.Error("Session get failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewStoreError("session get failed", "get", key, err)
	}

	st := NewState()
	if err := json.Unmarshal(value, st); err != nil {
		r.logger.Warn("Discarding unreadable session", zap.String("key", key), zap.Error(err))
		return NewState(), nil
	}

	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		r.logger.Debug("Session TTL refresh failed", zap.String("key", key), zap.Error(err))
	}
	return st, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, id string, st *State) error {
	key := sessionKey(id)
	data, err := json.Marshal(st)
	if err != nil {
		return errors.NewStoreError("session marshal failed", "set", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Session set failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("session set failed", "set", key, err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	key := sessionKey(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Session delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("session delete failed", "del", key, err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}

// KeyedMutex serializes work per session id.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until id is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(id string) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
