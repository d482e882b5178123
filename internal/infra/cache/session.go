package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/overseaspath/crm-backend/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore resolves bearer tokens to authenticated users. The auth
// collaborator writes sessions here at login; this core only reads them.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(addr, password string, db int) *SessionStore {
	return &SessionStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *SessionStore) Find(ctx context.Context, token string) (*entity.User, error) {
	val, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	var user entity.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, fmt.Errorf("corrupt session payload: %w", err)
	}

	return &user, nil
}

// Put exists for the collaborator's benefit and for tests.
func (s *SessionStore) Put(ctx context.Context, token string, user entity.User, ttl time.Duration) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(token), payload, ttl).Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
