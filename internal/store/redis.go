package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatmap-editor/internal/config"
)

// releaseScript deletes the lock only when it still carries our token, so an
// expired lock re-acquired by another request is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisStore keeps each session as one JSON value under <prefix>:<id>.
type RedisStore struct {
	rdb *redis.Client
	cfg config.SessionConfig
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, cfg config.SessionConfig) *RedisStore {
	return &RedisStore{rdb: rdb, cfg: cfg, now: time.Now}
}

func (s *RedisStore) key(id string) string     { return s.cfg.Prefix + ":" + id }
func (s *RedisStore) lockKey(id string) string { return s.cfg.Prefix + ":" + id + ":lock" }

func (s *RedisStore) Create(ctx context.Context, name, owner string, doc []byte) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), payload, s.cfg.TTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	payload, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// XX: never resurrect a session that expired or was deleted mid-edit.
	ok, err := s.rdb.SetXX(ctx, s.key(sess.ID), payload, s.cfg.TTL).Result()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, s.key(id), s.lockKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Lock takes the session's edit lock with SET NX.  The lock expires after
// LockTTL even if the holder never releases it.
func (s *RedisStore) Lock(ctx context.Context, id string) (Unlock, error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, s.lockKey(id), token, s.cfg.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return nil, ErrSessionLocked
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = releaseScript.Run(context.Background(), s.rdb, []string{s.lockKey(id)}, token).Err()
		})
	}, nil
}
