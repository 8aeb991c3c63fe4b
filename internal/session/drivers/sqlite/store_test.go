package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gatherhall/gatherhall-go/internal/session"
	"github.com/gatherhall/gatherhall-go/pkg/cryptox"
	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")
	codec := session.NewCodec(cryptox.NewSealerFromKey([]byte("test-key")))

	s, err := NewStore(dsn, codec)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func memberSession(expiresAt time.Time) session.Session {
	return session.Session{
		Principal: session.Principal{
			Kind: session.KindMember,
			Member: &gatherapi.Member{
				ID: 1, FirstName: "Sam", LastName: "Lee",
				Email: "sam@example.com",
			},
		},
		ExpiresAt: expiresAt,
	}
}

func TestLoginAndCurrent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)

	want := memberSession(time.Now().Add(time.Hour))
	require.NoError(t, s.Login(ctx, want))

	got, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, session.KindMember, got.Principal.Kind)
	require.Equal(t, int64(1), got.Principal.Member.ID)
}

func TestLoginReplacesPrevious(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, memberSession(time.Now().Add(time.Hour))))

	org := session.Session{
		Principal: session.Principal{
			Kind: session.KindOrganization,
			Organization: &gatherapi.Organization{
				ID: 9, Name: "Northside Makers", Email: "hello@northside.example",
			},
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Login(ctx, org))

	got, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, session.KindOrganization, got.Principal.Kind)
	require.Nil(t, got.Principal.Member)
	require.Equal(t, int64(9), got.Principal.Organization.ID)
}

func TestExpiredSessionIsGone(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, memberSession(time.Now().Add(-time.Minute))))

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, memberSession(time.Now().Add(time.Hour))))
	require.NoError(t, s.ReplaceCookies(ctx, "api.example.com", []session.CookieRecord{
		{Name: "session_token", Value: "tok", Expires: time.Now().Add(time.Hour)},
	}))

	require.NoError(t, s.Logout(ctx))

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)

	cookies, err := s.Cookies(ctx, "api.example.com")
	require.NoError(t, err)
	require.Empty(t, cookies)
}

func TestUpdateTwoFactorEnabled(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.UpdateTwoFactorEnabled(ctx, true), session.ErrNoSession)

	require.NoError(t, s.Login(ctx, memberSession(time.Now().Add(time.Hour))))
	require.NoError(t, s.UpdateTwoFactorEnabled(ctx, true))

	got, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Principal.Member.TwoFactorEnabled)
	require.True(t, got.Principal.TwoFactorEnabled())
}

func TestCookiesRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	records := []session.CookieRecord{
		{Name: "session_token", Value: "tok-value", Path: "/", Expires: time.Now().Add(time.Hour), HTTPOnly: true},
		{Name: "csrf", Value: "csrf-value", Path: "/"},
	}
	require.NoError(t, s.ReplaceCookies(ctx, "api.example.com", records))

	got, err := s.Cookies(ctx, "api.example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Other hosts are isolated.
	other, err := s.Cookies(ctx, "other.example.com")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestCookiesDropExpired(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceCookies(ctx, "api.example.com", []session.CookieRecord{
		{Name: "stale", Value: "x", Expires: time.Now().Add(-time.Hour)},
		{Name: "fresh", Value: "y", Expires: time.Now().Add(time.Hour)},
	}))

	got, err := s.Cookies(ctx, "api.example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "fresh", got[0].Name)
}

func TestPayloadIsSealedAtRest(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, memberSession(time.Now().Add(time.Hour))))

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM session WHERE id = 1`).Scan(&payload)
	require.NoError(t, err)
	require.NotContains(t, string(payload), "sam@example.com")
}
