package service

import (
	"context"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/events"
	"clicker_game/internal/game"
	"clicker_game/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRepoTimeout = 5 * time.Second

// Notifier pushes a fresh player snapshot to the owner's live connections.
type Notifier interface {
	NotifyPlayer(userID int64, p *domain.Player)
}

// Options tune the game service. Zero values fall back to defaults.
type Options struct {
	RepoTimeout  time.Duration
	ClickMaxSkew time.Duration
	Location     *time.Location // day boundary for daily rewards

	Publisher events.Publisher
	Notifier  Notifier
	Audit     *AuditService
	Logger    *zap.Logger
}

// PurchaseResult is returned by PurchaseUpgrade.
type PurchaseResult struct {
	Player  *domain.Player        `json:"player"`
	Upgrade *domain.PlayerUpgrade `json:"upgrade"`
}

// DailyClaimResult is returned by ClaimDailyReward.
type DailyClaimResult struct {
	Player *domain.Player            `json:"player"`
	Reward *domain.PlayerDailyReward `json:"reward"`
}

// TaskClaimResult is returned by ClaimTaskReward.
type TaskClaimResult struct {
	Player *domain.Player      `json:"player"`
	Task   domain.TaskProgress `json:"task"`
}

// GameService handles game business logic: every mutation runs the pure
// engines from package game against a player locked by the store.
type GameService struct {
	store repository.Store
	clock clock.Clock
	opts  Options
	log   *zap.Logger
}

func NewGameService(store repository.Store, clk clock.Clock, opts Options) *GameService {
	if clk == nil {
		clk = clock.Real{}
	}
	if opts.RepoTimeout <= 0 {
		opts.RepoTimeout = defaultRepoTimeout
	}
	if opts.ClickMaxSkew <= 0 {
		opts.ClickMaxSkew = game.DefaultMaxClockSkew
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &GameService{
		store: store,
		clock: clk,
		opts:  opts,
		log:   log.Named("game"),
	}
}

// GetProfile applies pending regeneration, stamps last login and returns the player.
func (s *GameService) GetProfile(ctx context.Context, userID int64) (*domain.Player, error) {
	var out *domain.Player
	err := s.mutate(ctx, "profile", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		game.Regenerate(p, now)
		p.LastLogin = now
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sync overwrites energy and balance with client values (clamped).
func (s *GameService) Sync(ctx context.Context, userID, energy, balance int64) (domain.Resources, error) {
	var (
		out   *domain.Player
		delta int64
	)
	err := s.mutate(ctx, "sync", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		delta = game.ApplySync(p, energy, balance, now)
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		if delta != 0 {
			if err := s.record(ctx, tx, p, domain.TxTypeSync, delta, nil, now); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Resources{}, err
	}

	s.afterCommit(ctx, domain.EventPlayerSynced, out, map[string]interface{}{"delta": delta})
	s.opts.Audit.Log(ctx, userID, domain.AuditActionSync, domain.AuditCategoryGame, map[string]interface{}{"delta": delta})
	return out.Resources(), nil
}

// Click converts clicks into coins. claimedAt is the client timestamp of the batch.
func (s *GameService) Click(ctx context.Context, userID, clicks int64, claimedAt time.Time) (domain.Resources, error) {
	var (
		out    *domain.Player
		earned int64
	)
	err := s.mutate(ctx, "click", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		game.Regenerate(p, now)
		before := p.Balance
		if err := game.ApplyClicks(p, clicks, claimedAt, now, s.opts.ClickMaxSkew); err != nil {
			return err
		}
		earned = p.Balance - before
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		if err := s.record(ctx, tx, p, domain.TxTypeClick, earned, map[string]interface{}{"clicks": clicks}, now); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Resources{}, err
	}

	clicksTotal.Add(float64(clicks))
	coinsEarnedTotal.WithLabelValues(domain.TxTypeClick).Add(float64(earned))
	s.afterCommit(ctx, domain.EventClick, out, map[string]interface{}{"clicks": clicks, "earned": earned})
	return out.Resources(), nil
}

// ListUpgrades returns the active catalog with the player's level and next price.
func (s *GameService) ListUpgrades(ctx context.Context, userID int64) ([]domain.UpgradeOffer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()

	p, err := s.store.PlayerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListActiveUpgrades(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.ListPlayerUpgrades(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	levels := make(map[int64]int, len(owned))
	for _, pu := range owned {
		levels[pu.UpgradeID] = pu.Level
	}

	offers := make([]domain.UpgradeOffer, 0, len(catalog))
	for _, u := range catalog {
		if !u.UpgradeType.Valid() {
			continue
		}
		offer := domain.UpgradeOffer{Upgrade: *u, Level: levels[u.ID]}
		if cost, ok := game.UpgradeCost(u, offer.Level); ok {
			offer.NextCost = &cost
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// PurchaseUpgrade buys one level. expectedCost must match the current price.
func (s *GameService) PurchaseUpgrade(ctx context.Context, userID, upgradeID, expectedCost int64) (*PurchaseResult, error) {
	var (
		res     PurchaseResult
		upgrade *domain.Upgrade
		cost    int64
	)
	err := s.mutate(ctx, "purchase_upgrade", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		u, err := tx.GetUpgrade(ctx, upgradeID)
		if err != nil {
			return err
		}
		// неизвестный тип не дал бы эффекта, такие строки каталога скрыты
		if !u.IsActive || !u.UpgradeType.Valid() {
			return domain.ErrUpgradeNotFound
		}
		pu, err := tx.GetOrCreatePlayerUpgrade(ctx, p.ID, u.ID)
		if err != nil {
			return err
		}

		game.Regenerate(p, now)
		cost, err = game.ApplyUpgrade(p, u, pu, expectedCost, now)
		if err != nil {
			return err
		}
		if err := tx.UpdatePlayerUpgrade(ctx, pu); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		meta := map[string]interface{}{"upgradeId": u.ID, "level": pu.Level}
		if err := s.record(ctx, tx, p, domain.TxTypeUpgradePurchase, -cost, meta, now); err != nil {
			return err
		}

		upgrade = u
		res = PurchaseResult{Player: p, Upgrade: pu}
		return nil
	})
	if err != nil {
		return nil, err
	}

	upgradePurchasesTotal.WithLabelValues(string(upgrade.UpgradeType)).Inc()
	details := map[string]interface{}{
		"upgradeId":   upgrade.ID,
		"upgradeType": string(upgrade.UpgradeType),
		"level":       res.Upgrade.Level,
		"cost":        cost,
	}
	s.afterCommit(ctx, domain.EventUpgradePurchased, res.Player, details)
	s.opts.Audit.Log(ctx, userID, domain.AuditActionUpgradePurchase, domain.AuditCategoryGame, details)
	return &res, nil
}

// DailyRewardsStatus returns the reward calendar plus the player's claims.
func (s *GameService) DailyRewardsStatus(ctx context.Context, userID int64) (*domain.DailyRewardsStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()

	p, err := s.store.PlayerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rewards, err := s.store.ListDailyRewards(ctx)
	if err != nil {
		return nil, err
	}
	claims, err := s.store.ListDailyClaims(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = []*domain.DailyReward{}
	}
	if claims == nil {
		claims = []*domain.PlayerDailyReward{}
	}
	return &domain.DailyRewardsStatus{Rewards: rewards, PlayerRewards: claims}, nil
}

// ClaimDailyReward claims at most once per calendar day in the game time zone.
func (s *GameService) ClaimDailyReward(ctx context.Context, userID int64) (*DailyClaimResult, error) {
	var res DailyClaimResult
	err := s.mutate(ctx, "claim_daily", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		last, err := tx.GetMostRecentDailyClaim(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := game.CheckDailyClaim(last, now, s.opts.Location); err != nil {
			return err
		}

		reward, err := tx.GetDailyReward(ctx, game.NextRewardDay(last))
		if err != nil {
			return err
		}
		if reward == nil {
			// past the end of the calendar: start over
			if reward, err = tx.GetDailyReward(ctx, 1); err != nil {
				return err
			}
		}
		if reward == nil {
			return domain.ErrNoRewardsAvailable
		}

		game.Regenerate(p, now)
		claim, err := game.ApplyDailyReward(p, reward, last, now)
		if err != nil {
			return err
		}
		if err := tx.CreateDailyClaim(ctx, claim); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		if reward.RewardType == domain.RewardTypeCoins {
			meta := map[string]interface{}{"day": reward.Day}
			if err := s.record(ctx, tx, p, domain.TxTypeDailyReward, reward.RewardAmount, meta, now); err != nil {
				return err
			}
		}

		res = DailyClaimResult{Player: p, Reward: claim}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reward := res.Reward.Reward
	rewardClaimsTotal.WithLabelValues("daily").Inc()
	if reward.RewardType == domain.RewardTypeCoins {
		coinsEarnedTotal.WithLabelValues(domain.TxTypeDailyReward).Add(float64(reward.RewardAmount))
	}
	details := map[string]interface{}{
		"day":           reward.Day,
		"rewardType":    string(reward.RewardType),
		"amount":        reward.RewardAmount,
		"isConsecutive": res.Reward.IsConsecutive,
	}
	s.afterCommit(ctx, domain.EventDailyClaimed, res.Player, details)
	s.opts.Audit.Log(ctx, userID, domain.AuditActionDailyClaim, domain.AuditCategoryGame, details)
	return &res, nil
}

// ListTasks returns every active task with the player's progress. Tasks the
// player never touched get a zero row with id 0.
func (s *GameService) ListTasks(ctx context.Context, userID int64) ([]domain.TaskProgress, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()

	p, err := s.store.PlayerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListActiveTasks(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.store.ListPlayerTasks(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	byTask := make(map[int64]*domain.PlayerTask, len(progress))
	for _, pt := range progress {
		byTask[pt.TaskID] = pt
	}

	out := make([]domain.TaskProgress, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.NewTaskProgress(t, byTask[t.ID]))
	}
	return out, nil
}

// ClaimTaskReward pays a completed task exactly once.
func (s *GameService) ClaimTaskReward(ctx context.Context, userID, taskID int64) (*TaskClaimResult, error) {
	var (
		res  TaskClaimResult
		task *domain.Task
	)
	err := s.mutate(ctx, "claim_task", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		t, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if !t.IsActive {
			return domain.ErrTaskNotFound
		}
		pt, err := tx.GetOrCreatePlayerTask(ctx, p.ID, t.ID)
		if err != nil {
			return err
		}

		game.Regenerate(p, now)
		if err := game.ApplyTaskReward(p, t, pt, now); err != nil {
			return err
		}
		if err := tx.UpdatePlayerTask(ctx, pt); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		if t.RewardCoins != 0 {
			meta := map[string]interface{}{"taskId": t.ID}
			if err := s.record(ctx, tx, p, domain.TxTypeTaskReward, t.RewardCoins, meta, now); err != nil {
				return err
			}
		}

		task = t
		res = TaskClaimResult{Player: p, Task: domain.NewTaskProgress(t, pt)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rewardClaimsTotal.WithLabelValues("task").Inc()
	coinsEarnedTotal.WithLabelValues(domain.TxTypeTaskReward).Add(float64(task.RewardCoins))
	details := map[string]interface{}{
		"taskId":       task.ID,
		"taskType":     string(task.TaskType),
		"rewardCoins":  task.RewardCoins,
		"rewardEnergy": task.RewardEnergy,
	}
	s.afterCommit(ctx, domain.EventTaskClaimed, res.Player, details)
	s.opts.Audit.Log(ctx, userID, domain.AuditActionTaskClaim, domain.AuditCategoryGame, details)
	return &res, nil
}

// GrantCoins adjusts a balance by hand (admin tooling). Negative amounts
// may not take the balance below zero.
func (s *GameService) GrantCoins(ctx context.Context, userID, amount int64, reason string) (*domain.Player, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	var player *domain.Player
	err := s.mutate(ctx, "admin_grant", userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		now := s.clock.Now()
		if amount < 0 && p.Balance+amount < 0 {
			return domain.ErrInsufficientBalance
		}
		game.Regenerate(p, now)
		if err := game.Credit(p, amount); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		meta := map[string]interface{}{"reason": reason}
		if err := s.record(ctx, tx, p, domain.TxTypeAdminGrant, amount, meta, now); err != nil {
			return err
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{"amount": amount, "reason": reason}
	s.afterCommit(ctx, domain.EventBalanceAdjusted, player, details)
	s.opts.Audit.Log(ctx, userID, domain.AuditActionAdminGrant, domain.AuditCategoryAdmin, details)
	return player, nil
}

// mutate runs fn under the player lock with the repository timeout and
// counts failures by kind.
func (s *GameService) mutate(ctx context.Context, op string, userID int64, fn repository.PlayerTxFunc) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()

	err := s.store.WithPlayerLock(ctx, userID, func(ctx context.Context, tx repository.PlayerTx, p *domain.Player) error {
		if err := fn(ctx, tx, p); err != nil {
			return err
		}
		return p.CheckInvariants()
	})
	if err != nil {
		kind := domain.KindOf(err)
		operationErrorsTotal.WithLabelValues(op, string(kind)).Inc()
		if kind == domain.KindInternal {
			s.log.Error("game operation failed", zap.String("op", op), zap.Int64("user_id", userID), zap.Error(err))
		}
		return err
	}
	return nil
}

func (s *GameService) record(ctx context.Context, tx repository.PlayerTx, p *domain.Player, typ string, amount int64, meta map[string]interface{}, now time.Time) error {
	return tx.RecordTransaction(ctx, &domain.Transaction{
		PlayerID:  p.ID,
		Type:      typ,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: now,
	})
}

// afterCommit publishes the event and pushes the snapshot. Neither failure
// reaches the caller: the state change is already durable.
func (s *GameService) afterCommit(ctx context.Context, typ string, p *domain.Player, data map[string]interface{}) {
	if s.opts.Notifier != nil {
		s.opts.Notifier.NotifyPlayer(p.UserID, p.Clone())
	}

	ev := domain.GameEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		PlayerID:   p.ID,
		UserID:     p.UserID,
		Balance:    p.Balance,
		Level:      p.Level,
		Data:       data,
		OccurredAt: s.clock.Now(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RepoTimeout)
	defer cancel()
	if err := s.opts.Publisher.Publish(pubCtx, ev); err != nil {
		s.log.Warn("publish game event failed", zap.String("type", typ), zap.Int64("player_id", p.ID), zap.Error(err))
	}
}
