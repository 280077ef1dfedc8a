package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/repository"
	"clicker_game/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	fail map[int64]error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := c.(tgbotapi.MessageConfig)
	if err := f.fail[msg.ChatID]; err != nil {
		return tgbotapi.Message{}, err
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func newTestBot(t *testing.T) (*AdminBot, *fakeSender, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	clk := clock.NewManual(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i, name := range []string{"neo", "trinity"} {
		tgID := int64(100 + i)
		_, err := store.CreateWithPlayer(ctx, &domain.User{Username: name, TgID: &tgID}, clk.Now())
		require.NoError(t, err)
	}

	game := service.NewGameService(store, clk, service.Options{Audit: service.NewAuditService(store)})
	admin := service.NewAdminService(store, store, store, game, clk, time.UTC)

	s := &fakeSender{fail: map[int64]error{}}
	b := newAdminBot(s, admin, []int64{1})
	b.broadcastDelay = 0
	return b, s, store
}

func TestRespondHelpAndUnknown(t *testing.T) {
	b, _, _ := newTestBot(t)
	ctx := context.Background()

	assert.Contains(t, b.respond(ctx, 1, "help", ""), "/addcoins")
	assert.Contains(t, b.respond(ctx, 1, "nope", ""), "Неизвестная команда")
}

func TestRespondAddCoinsAndUser(t *testing.T) {
	b, _, store := newTestBot(t)
	ctx := context.Background()

	out := b.respond(ctx, 1, "addcoins", "@neo 250")
	assert.Contains(t, out, "Новый баланс: 250")

	u, err := store.GetByTgID(ctx, 100)
	require.NoError(t, err)
	p, err := store.PlayerByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), p.Balance)

	out = b.respond(ctx, 1, "user", "100")
	assert.Contains(t, out, "@neo")
	assert.Contains(t, out, "Баланс: 250")

	assert.Contains(t, b.respond(ctx, 1, "addcoins", "@neo -1000"), "Not enough coins")
	assert.Contains(t, b.respond(ctx, 1, "addcoins", "@neo abc"), "Неверная сумма")
	assert.Contains(t, b.respond(ctx, 1, "addcoins", "@neo"), "Использование")
	assert.Contains(t, b.respond(ctx, 1, "user", "@smith"), "Игрок не найден")

	audit := b.respond(ctx, 1, "audit", "@neo")
	assert.Contains(t, audit, "admin/admin_grant")
	assert.Contains(t, b.respond(ctx, 1, "audit", "@trinity"), "Нет действий")
}

func TestRespondStatsAndTop(t *testing.T) {
	b, _, _ := newTestBot(t)
	ctx := context.Background()

	b.respond(ctx, 1, "addcoins", "101 40")

	stats := b.respond(ctx, 1, "stats", "")
	assert.Contains(t, stats, "Всего: 2")
	assert.Contains(t, stats, "Коинов у игроков: 40")

	top := b.respond(ctx, 1, "top", "5")
	lines := strings.Split(strings.TrimSpace(top), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1. @trinity — 40 🪙", lines[2])
}

func TestAddAdmin(t *testing.T) {
	b, _, _ := newTestBot(t)
	assert.False(t, b.isAdmin(42))

	assert.Contains(t, b.respond(context.Background(), 1, "addadmin", "42"), "Добавлен админ 42")
	assert.True(t, b.isAdmin(42))
	assert.Contains(t, b.respond(context.Background(), 1, "addadmin", "42"), "уже админ")
}

func TestBroadcast(t *testing.T) {
	b, s, _ := newTestBot(t)
	s.fail[101] = errors.New("Forbidden: bot was blocked by the user")

	out := b.respond(context.Background(), 1, "broadcast", "Новый сезон!")
	assert.Contains(t, out, "Отправлено: 1")
	assert.Contains(t, out, "Заблокировали бота: 1")

	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(100), s.sent[0].ChatID)
	assert.Equal(t, "Новый сезон!", s.sent[0].Text)
}
