package game

import (
	"testing"
	"time"

	"clicker_game/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUpgrade(kind domain.UpgradeType) *domain.Upgrade {
	return &domain.Upgrade{
		ID:              1,
		Name:            "Power",
		BaseCost:        100,
		CostMultiplier:  1.5,
		UpgradeType:     kind,
		BaseEffectValue: 2,
		EffectPerLevel:  1,
		MaxLevel:        3,
		IsActive:        true,
	}
}

func TestUpgradeCostCurve(t *testing.T) {
	u := testUpgrade(domain.UpgradeCoinsPerClick)
	for level, want := range []int64{100, 150, 225} {
		got, ok := UpgradeCost(u, level)
		if !ok || got != want {
			t.Fatalf("cost(level=%d) = %d,%v; want %d", level, got, ok, want)
		}
	}
	if _, ok := UpgradeCost(u, 3); ok {
		t.Fatalf("expected no cost at max level")
	}
}

func TestUpgradeCostOverflow(t *testing.T) {
	u := testUpgrade(domain.UpgradeEnergyRegen)
	u.MaxLevel = 1000
	_, ok := UpgradeCost(u, 500)
	assert.False(t, ok)

	p := &domain.Player{Balance: 1 << 62}
	_, err := ApplyUpgrade(p, u, &domain.PlayerUpgrade{Level: 500}, 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrMaxLevelReached)
}

func TestUpgradeDelta(t *testing.T) {
	u := testUpgrade(domain.UpgradeCoinsPerClick)
	assert.Equal(t, int64(2), UpgradeDelta(u, 1))
	assert.Equal(t, int64(3), UpgradeDelta(u, 2))
	assert.Equal(t, int64(4), UpgradeDelta(u, 3))
}

func TestApplyUpgradeCoinsPerClick(t *testing.T) {
	p := newPlayer(500, 1000, 1)
	p.Balance = 1000
	u := testUpgrade(domain.UpgradeCoinsPerClick)
	pu := &domain.PlayerUpgrade{PlayerID: p.ID, UpgradeID: u.ID}

	paid, err := ApplyUpgrade(p, u, pu, 100, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), paid)
	assert.Equal(t, int64(900), p.Balance)
	assert.Equal(t, 1, pu.Level)
	assert.Equal(t, int64(3), p.CoinsPerClick)
	require.NotNil(t, pu.PurchasedAt)

	_, err = ApplyUpgrade(p, u, pu, 150, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.CoinsPerClick)
}

func TestApplyUpgradeMaxEnergyTopUp(t *testing.T) {
	full := newPlayer(1000, 1000, 1)
	full.Balance = 100
	u := testUpgrade(domain.UpgradeMaxEnergy)
	_, err := ApplyUpgrade(full, u, &domain.PlayerUpgrade{}, 100, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), full.MaxEnergy)
	assert.Equal(t, int64(1002), full.Energy)

	partial := newPlayer(400, 1000, 1)
	partial.Balance = 100
	_, err = ApplyUpgrade(partial, u, &domain.PlayerUpgrade{}, 100, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), partial.MaxEnergy)
	assert.Equal(t, int64(400), partial.Energy)
}

func TestApplyUpgradeRegen(t *testing.T) {
	p := newPlayer(0, 1000, 1)
	p.Balance = 100
	_, err := ApplyUpgrade(p, testUpgrade(domain.UpgradeEnergyRegen), &domain.PlayerUpgrade{}, 100, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.EnergyRegenRate)
}

func TestApplyUpgradeRejects(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		level    int
		expected int64
		wantErr  error
	}{
		{"cost mismatch", 1000, 0, 99, domain.ErrCostMismatch},
		{"not enough coins", 99, 0, 100, domain.ErrInsufficientBalance},
		{"max level", 1_000_000, 3, 0, domain.ErrMaxLevelReached},
		{"max level wins over mismatch", 1_000_000, 3, 12345, domain.ErrMaxLevelReached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlayer(10, 1000, 1)
			p.Balance = tt.balance
			pu := &domain.PlayerUpgrade{Level: tt.level}
			before, puBefore := *p, *pu

			_, err := ApplyUpgrade(p, testUpgrade(domain.UpgradeCoinsPerClick), pu, tt.expected, t0)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, *p)
			assert.Equal(t, puBefore, *pu)
		})
	}
}
