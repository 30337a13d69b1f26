package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

const (
	keyPrefix     = "session:"
	userKeyPrefix = "session:user:"
)

func sessionKey(sid string) string   { return keyPrefix + sid }
func userIndexKey(uid string) string { return userKeyPrefix + uid }

// RedisStore keeps each session as JSON under session:<sid> and indexes the
// ids per user in the set session:user:<uid>.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	idx := userIndexKey(sess.UserID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(sess.ID), b, ttl)
		p.SAdd(ctx, idx, sess.ID)
		p.Expire(ctx, idx, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, sid string) (*domain.Session, error) {
	b, err := s.rdb.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrExpired
	}
	if err != nil {
		return nil, err
	}
	var out domain.Session
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &out, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	sess, err := s.Get(ctx, sid)
	if errors.Is(err, domain.ErrExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(sid))
		p.SRem(ctx, userIndexKey(sess.UserID), sid)
		return nil
	})
	return err
}

func (s *RedisStore) RefreshUser(ctx context.Context, u *user.User) error {
	idx := userIndexKey(u.UserID)
	sids, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	for _, sid := range sids {
		sess, err := s.Get(ctx, sid)
		if errors.Is(err, domain.ErrExpired) {
			s.rdb.SRem(ctx, idx, sid)
			continue
		}
		if err != nil {
			return err
		}
		sess.Apply(u)
		b, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		if err := s.rdb.SetArgs(ctx, sessionKey(sid), b, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	return nil
}

func (s *RedisStore) InvalidateUser(ctx context.Context, userID string) error {
	idx := userIndexKey(userID)
	sids, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, sessionKey(sid))
	}
	keys = append(keys, idx)
	return s.rdb.Del(ctx, keys...).Err()
}
