// Package sqlite persists the session store in a local SQLite database.
// This is the default backend: a single file under the user's state
// directory, sealed payloads, WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gatherhall/gatherhall-go/internal/session"

	_ "modernc.org/sqlite"
)

type Store struct {
	db    *sql.DB
	codec *session.Codec
}

// NewStore opens (or creates) the database at dsn and applies migrations.
func NewStore(dsn string, codec *session.Codec) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, codec: codec}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Current returns the committed session. An expired row is treated the same
// as no row at all.
func (s *Store) Current(ctx context.Context) (session.Session, error) {
	var payload []byte
	var expiresAt time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM session WHERE id = 1`,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, session.ErrNoSession
	}
	if err != nil {
		return session.Session{}, err
	}

	if time.Now().After(expiresAt) {
		return session.Session{}, session.ErrNoSession
	}

	return s.codec.DecodeSession(payload)
}

// Login commits a session, replacing any previous one.
func (s *Store) Login(ctx context.Context, sess session.Session) error {
	payload, err := s.codec.EncodeSession(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, payload, expires_at, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`,
		payload, sess.ExpiresAt.UTC(),
	)
	return err
}

// Logout discards the session and every persisted cookie.
func (s *Store) Logout(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return err
	}

	return tx.Commit()
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

// Cookies returns the persisted cookies for a host, dropping expired rows.
func (s *Store) Cookies(ctx context.Context, host string) ([]session.CookieRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM cookies WHERE host = ?`, host,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []session.CookieRecord
	now := time.Now()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		rec, err := s.codec.DecodeCookie(payload)
		if err != nil {
			return nil, err
		}
		if !rec.Expires.IsZero() && rec.Expires.Before(now) {
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ReplaceCookies overwrites the persisted cookies for a host.
func (s *Store) ReplaceCookies(ctx context.Context, host string, cookies []session.CookieRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE host = ?`, host); err != nil {
		return err
	}

	for _, rec := range cookies {
		payload, err := s.codec.EncodeCookie(rec)
		if err != nil {
			return err
		}

		var expires any
		if !rec.Expires.IsZero() {
			expires = rec.Expires.UTC()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cookies (host, name, payload, expires_at) VALUES (?, ?, ?, ?)`,
			host, rec.Name, payload, expires,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
