package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

var baseTime = time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "doc-1", ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func newManager(store Store, now *time.Time) *Manager {
	return NewManager(store, 0, logging.Discard(), WithClock(func() time.Time { return *now }))
}

func TestBeginUsesTokenExpiry(t *testing.T) {
	now := baseTime
	m := newManager(NewMemoryStore(), &now)

	s, err := m.Begin(context.Background(), signedToken(t, baseTime.Add(2*time.Hour)), &reserva.User{Name: "Dr Rao"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, baseTime, s.CreatedAt)
	assert.Equal(t, baseTime.Add(2*time.Hour), s.ExpiresAt)
	assert.Equal(t, "Dr Rao", s.User.Name)
}

func TestBeginFallsBackToDefaultTTL(t *testing.T) {
	now := baseTime
	m := newManager(NewMemoryStore(), &now)

	s, err := m.Begin(context.Background(), "opaque-token", nil)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(DefaultTTL), s.ExpiresAt)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	s, err = m.Begin(context.Background(), noExp, nil)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(DefaultTTL), s.ExpiresAt)
}

func TestBeginRejectsEmptyOrExpiredToken(t *testing.T) {
	now := baseTime
	m := newManager(NewMemoryStore(), &now)

	_, err := m.Begin(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = m.Begin(context.Background(), signedToken(t, baseTime.Add(-time.Minute)), nil)
	assert.Error(t, err)
}

func TestResolveExpiresSessions(t *testing.T) {
	now := baseTime
	store := NewMemoryStore()
	m := newManager(store, &now)
	ctx := context.Background()

	s, err := m.Begin(ctx, signedToken(t, baseTime.Add(time.Hour)), nil)
	require.NoError(t, err)

	got, err := m.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)

	now = baseTime.Add(time.Hour)
	_, err = m.Resolve(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "expired session is dropped from the store")

	_, err = m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserAndEnd(t *testing.T) {
	now := baseTime
	m := newManager(NewMemoryStore(), &now)
	ctx := context.Background()

	s, err := m.Begin(ctx, "opaque", &reserva.User{Name: "Dr Rao"})
	require.NoError(t, err)

	now = baseTime.Add(time.Hour)
	updated, err := m.UpdateUser(ctx, s.ID, &reserva.User{Name: "Dr Rao", ProfileCompleted: true})
	require.NoError(t, err)
	assert.True(t, updated.User.ProfileCompleted)
	assert.Equal(t, s.ExpiresAt, updated.ExpiresAt)

	got, err := m.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.User.ProfileCompleted)

	require.NoError(t, m.End(ctx, s.ID))
	require.NoError(t, m.End(ctx, s.ID))
	require.NoError(t, m.End(ctx, ""))
	_, err = m.Resolve(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.UpdateUser(ctx, s.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := baseTime
	store := NewRedisStore(client)
	m := newManager(store, &now)
	ctx := context.Background()

	s, err := m.Begin(ctx, signedToken(t, baseTime.Add(90*time.Minute)), &reserva.User{Name: "Dr Rao", Slug: "dr-rao"})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, mr.TTL("reserva:session:"+s.ID))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, "dr-rao", got.User.Slug)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	mr.FastForward(91 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreNonPositiveTTLDeletes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	sess := &Session{ID: "abc", Token: "t"}
	require.NoError(t, store.Save(ctx, sess, time.Hour))
	require.NoError(t, store.Save(ctx, sess, 0))
	assert.False(t, mr.Exists("reserva:session:abc"))
}

func TestRedisStoreReportsCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("reserva:session:bad", "not-json"))

	_, err := NewRedisStore(client).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
