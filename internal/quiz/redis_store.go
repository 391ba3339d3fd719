package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapquiz/backend/internal/models"
)

// RedisSessionStore keeps live sessions in a local map and mirrors item
// snapshots into Redis with a TTL, so a restarted instance can pick up a
// user's quiz where it left off. Selection state rides along in the
// snapshot since it lives on the items themselves.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.Mutex
	local  map[string]*Session
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		local:  make(map[string]*Session),
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, uid string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.local[uid]; ok {
		return session, nil
	}

	session := NewSession()
	data, err := s.client.Get(ctx, s.key(uid)).Bytes()
	switch {
	case err == redis.Nil:
		// no snapshot, fresh session
	case err != nil:
		return nil, fmt.Errorf("load quiz session: %w", err)
	default:
		var items []models.QuizItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode quiz session: %w", err)
		}
		session.ReplaceAll(items)
	}

	s.local[uid] = session
	return session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, uid string, session *Session) error {
	data, err := json.Marshal(session.Items())
	if err != nil {
		return fmt.Errorf("encode quiz session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(uid), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save quiz session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) key(uid string) string {
	return "quiz:session:" + uid
}
