package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.GameEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.GameEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates map[int64][]*domain.Player
}

func (n *recordingNotifier) NotifyPlayer(userID int64, p *domain.Player) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.updates == nil {
		n.updates = make(map[int64][]*domain.Player)
	}
	n.updates[userID] = append(n.updates[userID], p)
}

type gameFixture struct {
	svc    *GameService
	store  *repository.MemoryStore
	clock  *clock.Manual
	pub    *recordingPublisher
	notify *recordingNotifier
	player *domain.Player
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clk := clock.NewManual(start)
	pub := &recordingPublisher{}
	notify := &recordingNotifier{}

	p, err := store.CreateWithPlayer(context.Background(), &domain.User{Username: "alice"}, clk.Now())
	require.NoError(t, err)

	svc := NewGameService(store, clk, Options{Publisher: pub, Notifier: notify})
	return &gameFixture{svc: svc, store: store, clock: clk, pub: pub, notify: notify, player: p}
}

func (f *gameFixture) current(t *testing.T) *domain.Player {
	t.Helper()
	p, err := f.store.PlayerByUserID(context.Background(), f.player.UserID)
	require.NoError(t, err)
	return p
}

// fund sets the balance through Sync.
func (f *gameFixture) fund(t *testing.T, balance int64) {
	t.Helper()
	cur := f.current(t)
	_, err := f.svc.Sync(context.Background(), f.player.UserID, cur.Energy, balance)
	require.NoError(t, err)
}

func TestClick(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	res, err := f.svc.Click(ctx, f.player.UserID, 10, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Balance)
	assert.Equal(t, int64(990), res.Energy)
	assert.Equal(t, int64(1000), res.MaxEnergy)

	ledger := f.store.Transactions(f.player.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.TxTypeClick, ledger[0].Type)
	assert.Equal(t, int64(10), ledger[0].Amount)

	assert.Equal(t, []string{domain.EventClick}, f.pub.types())
	require.Len(t, f.notify.updates[f.player.UserID], 1)
	assert.Equal(t, int64(10), f.notify.updates[f.player.UserID][0].Balance)
}

func TestClickFailuresLeaveStateUntouched(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	_, err := f.svc.Click(ctx, f.player.UserID, 10, f.clock.Now().Add(-time.Minute))
	require.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	_, err = f.svc.Sync(ctx, f.player.UserID, 5, 0)
	require.NoError(t, err)
	_, err = f.svc.Click(ctx, f.player.UserID, 6, f.clock.Now())
	require.ErrorIs(t, err, domain.ErrInsufficientEnergy)

	p := f.current(t)
	assert.Equal(t, int64(5), p.Energy)
	assert.Equal(t, int64(0), p.Balance)
	assert.Empty(t, f.store.Transactions(f.player.ID))
}

func TestClickUnknownPlayer(t *testing.T) {
	f := newGameFixture(t)
	_, err := f.svc.Click(context.Background(), 999, 1, f.clock.Now())
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newGameFixture(t)
	f.pub.err = errors.New("broker down")

	res, err := f.svc.Click(context.Background(), f.player.UserID, 1, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Balance)
}

func TestGetProfileRegeneratesAndStampsLogin(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	_, err := f.svc.Click(ctx, f.player.UserID, 100, f.clock.Now())
	require.NoError(t, err)

	f.clock.Advance(30*time.Second + 500*time.Millisecond)
	p, err := f.svc.GetProfile(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(930), p.Energy)
	assert.True(t, p.LastLogin.Equal(f.clock.Now()))

	// повторный запрос в ту же секунду ничего не меняет
	again, err := f.svc.GetProfile(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(930), again.Energy)

	f.clock.Advance(time.Hour)
	full, err := f.svc.GetProfile(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, full.MaxEnergy, full.Energy)
}

func TestSyncClamps(t *testing.T) {
	f := newGameFixture(t)

	res, err := f.svc.Sync(context.Background(), f.player.UserID, 5000, -10)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Energy)
	assert.Equal(t, int64(0), res.Balance)

	res, err = f.svc.Sync(context.Background(), f.player.UserID, -1, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Energy)
	assert.Equal(t, int64(250), res.Balance)

	ledger := f.store.Transactions(f.player.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.TxTypeSync, ledger[0].Type)
	assert.Equal(t, int64(250), ledger[0].Amount)
}

func seedClickUpgrade(f *gameFixture) *domain.Upgrade {
	return f.store.AddUpgrade(&domain.Upgrade{
		Name:            "Better Clicks",
		BaseCost:        100,
		CostMultiplier:  1.5,
		UpgradeType:     domain.UpgradeCoinsPerClick,
		BaseEffectValue: 1,
		EffectPerLevel:  1,
		MaxLevel:        3,
		IsActive:        true,
	})
}

func TestPurchaseUpgradeCostCurve(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	u := seedClickUpgrade(f)
	f.fund(t, 1000)

	for i, cost := range []int64{100, 150, 225} {
		offers, err := f.svc.ListUpgrades(ctx, f.player.UserID)
		require.NoError(t, err)
		require.Len(t, offers, 1)
		require.NotNil(t, offers[0].NextCost)
		assert.Equal(t, cost, *offers[0].NextCost)
		assert.Equal(t, i, offers[0].Level)

		res, err := f.svc.PurchaseUpgrade(ctx, f.player.UserID, u.ID, cost)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Upgrade.Level)
		assert.NotNil(t, res.Upgrade.PurchasedAt)
	}

	p := f.current(t)
	assert.Equal(t, int64(1000-475), p.Balance)
	// 1 + (1) + (1+1) + (1+2)
	assert.Equal(t, int64(7), p.CoinsPerClick)

	offers, err := f.svc.ListUpgrades(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Nil(t, offers[0].NextCost)

	_, err = f.svc.PurchaseUpgrade(ctx, f.player.UserID, u.ID, 0)
	require.ErrorIs(t, err, domain.ErrMaxLevelReached)
}

func TestPurchaseUpgradeRejectsWithoutMutation(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	u := seedClickUpgrade(f)

	_, err := f.svc.PurchaseUpgrade(ctx, f.player.UserID, u.ID, 100)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	f.fund(t, 500)
	_, err = f.svc.PurchaseUpgrade(ctx, f.player.UserID, u.ID, 99)
	require.ErrorIs(t, err, domain.ErrCostMismatch)

	p := f.current(t)
	assert.Equal(t, int64(500), p.Balance)
	assert.Equal(t, int64(1), p.CoinsPerClick)

	owned, err := f.store.ListPlayerUpgrades(ctx, f.player.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	_, err = f.svc.PurchaseUpgrade(ctx, f.player.UserID, 12345, 100)
	require.ErrorIs(t, err, domain.ErrUpgradeNotFound)

	odd := f.store.AddUpgrade(&domain.Upgrade{Name: "Mystery", BaseCost: 10, CostMultiplier: 2, UpgradeType: "mystery", MaxLevel: 5, IsActive: true})
	offers, err := f.svc.ListUpgrades(ctx, f.player.UserID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, u.ID, offers[0].ID)
	_, err = f.svc.PurchaseUpgrade(ctx, f.player.UserID, odd.ID, 10)
	require.ErrorIs(t, err, domain.ErrUpgradeNotFound)
}

func TestPurchaseMaxEnergyTopsUpFullBar(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	u := f.store.AddUpgrade(&domain.Upgrade{
		Name:            "Energy Boost",
		BaseCost:        200,
		CostMultiplier:  2,
		UpgradeType:     domain.UpgradeMaxEnergy,
		BaseEffectValue: 100,
		EffectPerLevel:  50,
		MaxLevel:        5,
		IsActive:        true,
	})
	f.fund(t, 200)

	res, err := f.svc.PurchaseUpgrade(ctx, f.player.UserID, u.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), res.Player.MaxEnergy)
	assert.Equal(t, int64(1100), res.Player.Energy)
	assert.Equal(t, []string{domain.EventPlayerSynced, domain.EventUpgradePurchased}, f.pub.types())
}

func seedDailyRewards(f *gameFixture) {
	f.store.AddDailyReward(&domain.DailyReward{Day: 1, RewardType: domain.RewardTypeCoins, RewardAmount: 100})
	f.store.AddDailyReward(&domain.DailyReward{Day: 2, RewardType: domain.RewardTypeCoins, RewardAmount: 200})
}

func TestClaimDailyRewardOncePerDay(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	seedDailyRewards(f)

	first, err := f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.Player.Balance)
	assert.Equal(t, 1, first.Reward.Reward.Day)
	assert.False(t, first.Reward.IsConsecutive)

	_, err = f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.ErrorIs(t, err, domain.ErrAlreadyClaimedToday)

	f.clock.Advance(24 * time.Hour)
	second, err := f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Reward.Reward.Day)
	assert.True(t, second.Reward.IsConsecutive)
	assert.Equal(t, int64(300), second.Player.Balance)

	// за концом календаря снова первый день
	f.clock.Advance(24 * time.Hour)
	third, err := f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Reward.Reward.Day)
	assert.Equal(t, int64(400), third.Player.Balance)

	status, err := f.svc.DailyRewardsStatus(ctx, f.player.UserID)
	require.NoError(t, err)
	assert.Len(t, status.Rewards, 2)
	require.Len(t, status.PlayerRewards, 3)
	assert.NotNil(t, status.PlayerRewards[0].Reward)

	assert.Len(t, f.store.Transactions(f.player.ID), 3)
}

func TestClaimDailyRewardUsesGameTimezone(t *testing.T) {
	f := newGameFixture(t)
	seedDailyRewards(f)
	loc := time.FixedZone("UTC+3", 3*3600)
	f.svc = NewGameService(f.store, f.clock, Options{Location: loc})
	ctx := context.Background()

	// 20:00 UTC is already 23:00 local; 21:30 UTC is the next local day
	f.clock.Set(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC))
	_, err := f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.NoError(t, err)

	f.clock.Set(time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC))
	_, err = f.svc.ClaimDailyReward(ctx, f.player.UserID)
	require.NoError(t, err)
}

func TestClaimDailyRewardEmptyCatalog(t *testing.T) {
	f := newGameFixture(t)
	_, err := f.svc.ClaimDailyReward(context.Background(), f.player.UserID)
	require.ErrorIs(t, err, domain.ErrNoRewardsAvailable)
}

func TestTaskClaimExactlyOnce(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	task := f.store.AddTask(&domain.Task{
		Name:         "Click 10 times",
		TaskType:     domain.TaskClicks,
		TargetValue:  10,
		RewardCoins:  50,
		RewardEnergy: 500,
		IsActive:     true,
	})

	_, err := f.svc.ClaimTaskReward(ctx, f.player.UserID, task.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotCompleted)

	list, err := f.svc.ListTasks(ctx, f.player.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(0), list[0].ID, "failed claim must not persist the lazily created row")

	f.store.SetTaskProgress(f.player.ID, task.ID, 10, true)
	res, err := f.svc.ClaimTaskReward(ctx, f.player.UserID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Player.Balance)
	assert.Equal(t, res.Player.MaxEnergy, res.Player.Energy, "energy is clamped to max")
	require.NotNil(t, res.Task.CompletedAt)

	_, err = f.svc.ClaimTaskReward(ctx, f.player.UserID, task.ID)
	require.ErrorIs(t, err, domain.ErrRewardAlreadyClaimed)
	assert.Equal(t, int64(50), f.current(t).Balance)
}

func TestTaskClaimInactiveOrUnknown(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	hidden := f.store.AddTask(&domain.Task{Name: "hidden", TargetValue: 1, RewardCoins: 10})
	f.store.SetTaskProgress(f.player.ID, hidden.ID, 1, true)

	_, err := f.svc.ClaimTaskReward(ctx, f.player.UserID, hidden.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = f.svc.ClaimTaskReward(ctx, f.player.UserID, 777)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestConcurrentClicksSerialize(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	const workers = 150
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Click(ctx, f.player.UserID, 10, f.clock.Now())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientEnergy) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, ok)
	assert.Equal(t, 50, fail)
	p := f.current(t)
	assert.Equal(t, int64(0), p.Energy)
	assert.Equal(t, int64(1000), p.Balance)
}
