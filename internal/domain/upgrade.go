package domain

import "time"

type UpgradeType string

const (
	UpgradeCoinsPerClick UpgradeType = "coins_per_click"
	UpgradeMaxEnergy     UpgradeType = "max_energy"
	UpgradeEnergyRegen   UpgradeType = "energy_regen"
)

func (t UpgradeType) Valid() bool {
	switch t {
	case UpgradeCoinsPerClick, UpgradeMaxEnergy, UpgradeEnergyRegen:
		return true
	}
	return false
}

// Upgrade is a catalog entry with an exponential cost curve.
type Upgrade struct {
	ID              int64       `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Description     string      `db:"description" json:"description"`
	Icon            string      `db:"icon" json:"icon"`
	BaseCost        int64       `db:"base_cost" json:"baseCost"`
	CostMultiplier  float64     `db:"cost_multiplier" json:"costMultiplier"`
	UpgradeType     UpgradeType `db:"upgrade_type" json:"upgradeType"`
	BaseEffectValue int64       `db:"base_effect_value" json:"baseEffectValue"`
	EffectPerLevel  int64       `db:"effect_per_level" json:"effectPerLevel"`
	MaxLevel        int         `db:"max_level" json:"maxLevel"`
	IsActive        bool        `db:"is_active" json:"isActive"`
	SortOrder       int         `db:"sort_order" json:"order"`
}

type PlayerUpgrade struct {
	ID          int64      `db:"id" json:"id"`
	PlayerID    int64      `db:"player_id" json:"-"`
	UpgradeID   int64      `db:"upgrade_id" json:"upgradeId"`
	Level       int        `db:"level" json:"level"`
	PurchasedAt *time.Time `db:"purchased_at" json:"purchasedAt"`
}

// UpgradeOffer is a catalog entry annotated with the player's current level
// and the price of the next one (nil at max level).
type UpgradeOffer struct {
	Upgrade
	Level    int    `json:"level"`
	NextCost *int64 `json:"nextCost"`
}
