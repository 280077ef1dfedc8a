package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	"clicker_game/internal/domain"
	"clicker_game/internal/logger"
	"clicker_game/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the part of the Bot API the command handlers need.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminBot handles admin commands via Telegram
type AdminBot struct {
	api            *tgbotapi.BotAPI
	bot            sender
	adminService   *service.AdminService
	mu             sync.RWMutex
	adminIDs       []int64 // Telegram user IDs who can use admin commands
	stopCh         chan struct{}
	wg             sync.WaitGroup
	log            *zap.SugaredLogger
	broadcastDelay time.Duration
}

// NewAdminBot creates a new admin bot
func NewAdminBot(token string, adminService *service.AdminService, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newAdminBot(api, adminService, adminIDs)
	b.api = api
	b.log.Infow("admin bot authorized", "username", api.Self.UserName)
	return b, nil
}

func newAdminBot(s sender, adminService *service.AdminService, adminIDs []int64) *AdminBot {
	return &AdminBot{
		bot:            s,
		adminService:   adminService,
		adminIDs:       append([]int64(nil), adminIDs...),
		stopCh:         make(chan struct{}),
		log:            logger.With("component", "admin_bot"),
		broadcastDelay: 50 * time.Millisecond, // ~20 msg/s, лимит Telegram
	}
}

// Start starts listening for commands
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.From == nil || !msg.IsCommand() {
				continue
			}
			if !b.isAdmin(msg.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(msg)
		}
	}
}

// Stop gracefully stops the bot
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(tgID int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, id := range b.adminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	response := b.respond(ctx, msg.From.ID, msg.Command(), msg.CommandArguments())

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Errorw("error sending message", "error", err)
	}
}

// respond executes one command and returns the HTML reply.
func (b *AdminBot) respond(ctx context.Context, fromID int64, command, args string) string {
	args = strings.TrimSpace(args)
	switch command {
	case "start", "help":
		return helpMessage
	case "stats":
		return b.handleStats(ctx)
	case "user":
		return b.handleUser(ctx, args)
	case "top":
		return b.handleTop(ctx, args)
	case "addcoins":
		return b.handleAddCoins(ctx, fromID, args)
	case "audit":
		return b.handleAudit(ctx, args)
	case "addadmin":
		return b.handleAddAdmin(args)
	case "broadcast":
		return b.handleBroadcast(ctx, args)
	default:
		return "❌ Неизвестная команда. Используйте /help для списка команд."
	}
}

const helpMessage = `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - Статистика игры
/top [лимит] - Топ игроков по балансу

<b>👤 Игроки:</b>
/user &lt;@username|tg_id|id&gt; - Информация об игроке
/addcoins &lt;@username|tg_id|id&gt; &lt;сумма&gt; - Начислить (или списать) коины
/audit &lt;@username|tg_id|id&gt; [лимит] - Последние действия игрока

<b>🔐 Админы:</b>
/addadmin &lt;tg_id&gt; - Добавить админа

<b>📢 Рассылка:</b>
/broadcast &lt;текст&gt; - Отправить сообщение всем`

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.adminService.GetStats(ctx)
	if err != nil {
		return errorReply(err)
	}

	return fmt.Sprintf(`<b>📊 Статистика игры</b>

<b>👥 Игроки:</b>
• Всего: %d
• Активных сегодня: %d
• Активных за неделю: %d

<b>💰 Экономика:</b>
• Коинов у игроков: %d
• Накликано сегодня: %d
• Улучшений куплено сегодня: %d

<b>🎁 Награды сегодня:</b>
• Ежедневных: %d
• За задания: %d`,
		stats.TotalUsers,
		stats.ActiveToday,
		stats.ActiveWeek,
		stats.TotalBalance,
		stats.ClickCoinsToday,
		stats.UpgradesBoughtToday,
		stats.DailyClaimsToday,
		stats.TasksClaimedToday,
	)
}

func (b *AdminBot) handleUser(ctx context.Context, args string) string {
	if args == "" {
		return "❌ Использование: /user &lt;@username|tg_id|id&gt;"
	}

	info, err := b.adminService.GetPlayer(ctx, args)
	if err != nil {
		return errorReply(err)
	}
	u, p := info.User, info.Player

	tgID := "—"
	if u.TgID != nil {
		tgID = strconv.FormatInt(*u.TgID, 10)
	}

	return fmt.Sprintf(`<b>👤 Игрок</b>

• ID: %d
• Telegram ID: %s
• Username: @%s
• 🪙 Баланс: %d
• ⚡ Энергия: %d/%d (+%d/с)
• 👆 За клик: %d
• 📈 Уровень: %d
• 🕐 Последний вход: %s
• 📅 Регистрация: %s`,
		u.ID,
		tgID,
		html.EscapeString(u.Username),
		p.Balance,
		p.Energy, p.MaxEnergy, p.EnergyRegenRate,
		p.CoinsPerClick,
		p.Level,
		p.LastLogin.Format("02.01.2006 15:04"),
		u.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func (b *AdminBot) handleTop(ctx context.Context, args string) string {
	limit := 10
	if args != "" {
		if n, err := strconv.Atoi(args); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	top, err := b.adminService.TopPlayers(ctx, limit)
	if err != nil {
		return errorReply(err)
	}
	if len(top) == 0 {
		return "❌ Игроки не найдены"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🏆 Топ %d по балансу</b>\n\n", limit))
	for _, e := range top {
		sb.WriteString(fmt.Sprintf("%d. @%s — %d 🪙\n", e.Rank, html.EscapeString(e.Username), e.Balance))
	}
	return sb.String()
}

func (b *AdminBot) handleAddCoins(ctx context.Context, fromID int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "❌ Использование: /addcoins &lt;@username|tg_id|id&gt; &lt;сумма&gt;"
	}

	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || amount == 0 {
		return "❌ Неверная сумма"
	}

	p, err := b.adminService.AddCoins(ctx, parts[0], amount, fromID)
	if err != nil {
		return errorReply(err)
	}

	b.log.Infow("admin balance adjustment", "admin_id", fromID, "user_id", p.UserID, "amount", amount)
	return fmt.Sprintf("✅ %+d 🪙 игроку %s. Новый баланс: %d", amount, html.EscapeString(parts[0]), p.Balance)
}

func (b *AdminBot) handleAudit(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) == 0 || len(parts) > 2 {
		return "❌ Использование: /audit &lt;@username|tg_id|id&gt; [лимит]"
	}
	limit := 10
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	logs, err := b.adminService.RecentActions(ctx, parts[0], limit)
	if err != nil {
		return errorReply(err)
	}
	if len(logs) == 0 {
		return "📭 Нет действий"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>📜 Действия %s</b>\n\n", html.EscapeString(parts[0])))
	for _, l := range logs {
		sb.WriteString(fmt.Sprintf("%s | %s/%s\n", l.CreatedAt.Format("02.01 15:04"), l.Category, l.Action))
	}
	return sb.String()
}

func (b *AdminBot) handleAddAdmin(args string) string {
	if args == "" {
		return "❌ Использование: /addadmin &lt;tg_id&gt;"
	}

	tgID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	if b.isAdmin(tgID) {
		return fmt.Sprintf("⚠️ Пользователь %d уже админ", tgID)
	}

	b.mu.Lock()
	b.adminIDs = append(b.adminIDs, tgID)
	b.mu.Unlock()
	b.log.Infow("added new admin", "tg_id", tgID)

	return fmt.Sprintf("✅ Добавлен админ %d\n\n⚠️ Это временно до перезапуска. Добавьте в ADMIN_TELEGRAM_IDS для постоянного доступа.", tgID)
}

func (b *AdminBot) handleBroadcast(ctx context.Context, text string) string {
	if text == "" {
		return "❌ Использование: /broadcast &lt;текст&gt;"
	}

	ids, err := b.adminService.TelegramIDs(ctx)
	if err != nil {
		return errorReply(err)
	}
	if len(ids) == 0 {
		return "❌ Нет пользователей для рассылки"
	}

	b.log.Infow("starting broadcast", "recipients", len(ids))
	sent, failed, blocked := 0, 0, 0
	for i, tgID := range ids {
		if ctx.Err() != nil {
			failed += len(ids) - i
			break
		}
		msg := tgbotapi.NewMessage(tgID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := b.bot.Send(msg); err != nil {
			if strings.Contains(err.Error(), "blocked") || strings.Contains(err.Error(), "deactivated") {
				blocked++
			} else {
				b.log.Errorw("failed to send broadcast", "tg_id", tgID, "error", err)
				failed++
			}
		} else {
			sent++
		}
		if b.broadcastDelay > 0 {
			time.Sleep(b.broadcastDelay)
		}
	}

	b.log.Infow("broadcast complete", "sent", sent, "failed", failed, "blocked", blocked)
	return fmt.Sprintf(`✅ <b>Рассылка завершена</b>

📨 Отправлено: %d
❌ Не доставлено: %d
🚫 Заблокировали бота: %d`, sent, failed, blocked)
}

func errorReply(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		return "❌ Игрок не найден"
	case domain.KindOf(err) != domain.KindInternal:
		return "❌ " + html.EscapeString(err.Error())
	default:
		return fmt.Sprintf("❌ Ошибка: %s", html.EscapeString(err.Error()))
	}
}
