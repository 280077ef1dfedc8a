package service

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/repository"
	"clicker_game/internal/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRefreshStore struct {
	tokens map[string]int64
}

func (m *memRefreshStore) Save(_ context.Context, jti string, userID int64, _ time.Duration) error {
	m.tokens[jti] = userID
	return nil
}

func (m *memRefreshStore) Consume(_ context.Context, jti string, userID int64) error {
	owner, ok := m.tokens[jti]
	delete(m.tokens, jti)
	if !ok || owner != userID {
		return domain.ErrInvalidToken
	}
	return nil
}

func (m *memRefreshStore) Revoke(_ context.Context, jti string) error {
	delete(m.tokens, jti)
	return nil
}

func newAuthFixture(t *testing.T, botToken string) (*AuthService, *repository.MemoryStore, *clock.Manual) {
	t.Helper()
	store := repository.NewMemoryStore()
	clk := clock.NewManual(start)
	tokens := NewTokenService("test-secret", 15*time.Minute, time.Hour, clk)
	svc := NewAuthService(store, tokens, clk, AuthConfig{
		BotToken: botToken,
		Refresh:  &memRefreshStore{tokens: map[string]int64{}},
	})
	return svc, store, clk
}

func TestRegisterCreatesUserAndPlayer(t *testing.T) {
	svc, store, _ := newAuthFixture(t, "")
	ctx := context.Background()

	res, err := svc.Register(ctx, " Alice@Example.com ", "alice", "password123")
	require.NoError(t, err)
	require.NotNil(t, res.User.Email)
	assert.Equal(t, "alice@example.com", *res.User.Email)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	p, err := store.PlayerByUserID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.DefaultEnergy), p.Energy)

	_, err = svc.Register(ctx, "alice@example.com", "alice2", "password123")
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthAuditCarriesClientInfo(t *testing.T) {
	store := repository.NewMemoryStore()
	clk := clock.NewManual(start)
	svc := NewAuthService(store, NewTokenService("test-secret", time.Minute, time.Hour, clk), clk, AuthConfig{
		Refresh: &memRefreshStore{tokens: map[string]int64{}},
		Audit:   NewAuditService(store),
	})

	ctx := WithClientInfo(context.Background(), "203.0.113.7", "clicker-test/1.0")
	res, err := svc.Register(ctx, "carol@example.com", "carol", "password123")
	require.NoError(t, err)

	logs, err := store.RecentAudit(ctx, res.User.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		assert.Equal(t, domain.AuditCategoryAuth, l.Category)
		assert.Equal(t, "203.0.113.7", l.IP)
		assert.Equal(t, "clicker-test/1.0", l.UserAgent)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t, "")
	ctx := context.Background()
	_, err := svc.Register(ctx, "bob@example.com", "bob", "hunter22")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "BOB@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "bob", res.User.Username)

	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, "")
	ctx := context.Background()
	reg, err := svc.Register(ctx, "carol@example.com", "carol", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, domain.ErrInvalidToken, "a refresh token is single use")

	require.NoError(t, svc.Logout(ctx, next.RefreshToken))
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.Refresh(ctx, next.AccessToken)
	require.ErrorIs(t, err, domain.ErrInvalidToken, "access token is not a refresh token")
}

func TestTokenExpiry(t *testing.T) {
	clk := clock.NewManual(start)
	tokens := NewTokenService("s", time.Minute, time.Hour, clk)

	access, err := tokens.GenerateAccess(7)
	require.NoError(t, err)
	uid, err := tokens.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)

	clk.Advance(2 * time.Minute)
	_, err = tokens.ParseAccess(access)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	other := NewTokenService("other", time.Minute, time.Hour, clk)
	fresh, err := other.GenerateAccess(7)
	require.NoError(t, err)
	_, err = tokens.ParseAccess(fresh)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTelegramLogin(t *testing.T) {
	const bot = "42:TOKEN"
	svc, store, clk := newAuthFixture(t, bot)
	ctx := context.Background()

	vals := url.Values{}
	vals.Set("auth_date", strconv.FormatInt(clk.Now().Unix(), 10))
	vals.Set("user", `{"id":555,"first_name":"Tg"}`)
	vals.Set("hash", telegram.Sign(vals, bot))
	data := vals.Encode()

	first, err := svc.TelegramLogin(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "tg_555", first.User.Username)

	second, err := svc.TelegramLogin(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	p, err := store.PlayerByUserID(ctx, first.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p.TelegramID)
	assert.Equal(t, int64(555), *p.TelegramID)

	_, err = svc.TelegramLogin(ctx, "garbage")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTelegramLoginDisabled(t *testing.T) {
	svc, _, _ := newAuthFixture(t, "")
	assert.False(t, svc.TelegramEnabled())
	_, err := svc.TelegramLogin(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
