// Package redis persists the session store in Redis. Useful when several
// machines (or containers) share one operator identity, e.g. CI jobs driving
// the platform API; the sqlite driver stays the default for workstations.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/gatherhall/gatherhall-go/internal/session"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKey    = "gatherhall:session"
	cookiesPrefix = "gatherhall:cookies:"
)

type Store struct {
	rdb   *redis.Client
	codec *session.Codec
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, opts *redis.Options, codec *session.Codec) (*Store, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Store{rdb: rdb, codec: codec}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Current returns the committed session. Expiry is enforced by the key's
// TTL, so a missing key means no session.
func (s *Store) Current(ctx context.Context) (session.Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, session.ErrNoSession
	}
	if err != nil {
		return session.Session{}, err
	}

	return s.codec.DecodeSession(payload)
}

// Login commits a session, replacing any previous one. The key expires when
// the session does.
func (s *Store) Login(ctx context.Context, sess session.Session) error {
	payload, err := s.codec.EncodeSession(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute // already-stale expiry still commits, briefly
	}

	return s.rdb.Set(ctx, sessionKey, payload, ttl).Err()
}

// Logout discards the session and every persisted cookie.
func (s *Store) Logout(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, cookiesPrefix+"*", 0).Iterator()
	keys := []string{sessionKey}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	return s.rdb.Del(ctx, keys...).Err()
}

// UpdateTwoFactorEnabled rewrites the committed principal with the new flag.
func (s *Store) UpdateTwoFactorEnabled(ctx context.Context, enabled bool) error {
	sess, err := s.Current(ctx)
	if err != nil {
		return err
	}

	sess.Principal.SetTwoFactorEnabled(enabled)
	return s.Login(ctx, sess)
}

// Cookies returns the persisted cookies for a host.
func (s *Store) Cookies(ctx context.Context, host string) ([]session.CookieRecord, error) {
	fields, err := s.rdb.HGetAll(ctx, cookiesPrefix+host).Result()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	records := make([]session.CookieRecord, 0, len(fields))
	for _, sealed := range fields {
		rec, err := s.codec.DecodeCookie([]byte(sealed))
		if err != nil {
			return nil, err
		}
		if !rec.Expires.IsZero() && rec.Expires.Before(now) {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReplaceCookies overwrites the persisted cookies for a host.
func (s *Store) ReplaceCookies(ctx context.Context, host string, cookies []session.CookieRecord) error {
	key := cookiesPrefix + host

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for _, rec := range cookies {
		payload, err := s.codec.EncodeCookie(rec)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, key, rec.Name, payload)
	}

	_, err := pipe.Exec(ctx)
	return err
}
