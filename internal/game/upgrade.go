package game

import (
	"math"
	"time"

	"clicker_game/internal/domain"
)

// UpgradeCost returns floor(baseCost * multiplier^level). ok is false when
// the upgrade is already at max level or the price no longer fits in int64.
func UpgradeCost(u *domain.Upgrade, level int) (cost int64, ok bool) {
	if level >= u.MaxLevel {
		return 0, false
	}
	c := math.Floor(float64(u.BaseCost) * math.Pow(u.CostMultiplier, float64(level)))
	if c >= math.MaxInt64 || math.IsNaN(c) {
		return 0, false
	}
	return int64(c), true
}

// UpgradeDelta is the stat increase granted when reaching newLevel.
func UpgradeDelta(u *domain.Upgrade, newLevel int) int64 {
	return u.BaseEffectValue + u.EffectPerLevel*int64(newLevel-1)
}

// ApplyUpgrade validates and performs one level purchase, mutating p and pu.
// expectedCost must equal the server-side price so a stale client never pays
// an unexpected amount. Nothing is mutated on error. Returns the price paid.
func ApplyUpgrade(p *domain.Player, u *domain.Upgrade, pu *domain.PlayerUpgrade, expectedCost int64, now time.Time) (int64, error) {
	cost, ok := UpgradeCost(u, pu.Level)
	if !ok {
		return 0, domain.ErrMaxLevelReached
	}
	if expectedCost != cost {
		return 0, domain.ErrCostMismatch
	}
	if p.Balance < cost {
		return 0, domain.ErrInsufficientBalance
	}

	p.Balance -= cost
	pu.Level++
	pu.PurchasedAt = &now

	delta := UpgradeDelta(u, pu.Level)
	switch u.UpgradeType {
	case domain.UpgradeCoinsPerClick:
		p.CoinsPerClick += delta
	case domain.UpgradeMaxEnergy:
		// a full bar stays full
		wasFull := p.Energy == p.MaxEnergy
		p.MaxEnergy += delta
		if wasFull {
			p.Energy = p.MaxEnergy
		}
	case domain.UpgradeEnergyRegen:
		p.EnergyRegenRate += delta
	}
	return cost, nil
}
