package domain

import (
	"fmt"
	"time"
)

// Starting stats for a freshly registered player.
const (
	DefaultEnergy        int64 = 1000
	DefaultMaxEnergy     int64 = 1000
	DefaultRegenRate     int64 = 1
	DefaultCoinsPerClick int64 = 1
	DefaultLevel               = 1
)

// Player is the per-user game aggregate. Balance is serialized as a string
// so clients never lose precision on large values.
type Player struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"-"`
	TelegramID       *int64    `db:"telegram_id" json:"-"`
	Username         string    `db:"username" json:"username"`
	Balance          int64     `db:"balance" json:"balance,string"`
	Level            int       `db:"level" json:"level"`
	Energy           int64     `db:"energy" json:"energy"`
	MaxEnergy        int64     `db:"max_energy" json:"maxEnergy"`
	EnergyRegenRate  int64     `db:"energy_regen_rate" json:"energyRegenRate"`
	CoinsPerClick    int64     `db:"coins_per_click" json:"coinsPerClick"`
	LastEnergyUpdate time.Time `db:"last_energy_update" json:"-"`
	LastLogin        time.Time `db:"last_login" json:"lastLogin"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

func NewPlayer(userID int64, username string, now time.Time) *Player {
	return &Player{
		UserID:           userID,
		Username:         username,
		Level:            DefaultLevel,
		Energy:           DefaultEnergy,
		MaxEnergy:        DefaultMaxEnergy,
		EnergyRegenRate:  DefaultRegenRate,
		CoinsPerClick:    DefaultCoinsPerClick,
		LastEnergyUpdate: now,
		LastLogin:        now,
		CreatedAt:        now,
	}
}

// Clone returns a shallow copy, enough for engines that must not touch
// the original on failure.
func (p *Player) Clone() *Player {
	cp := *p
	return &cp
}

// CheckInvariants reports the first violated bound on the player's state.
func (p *Player) CheckInvariants() error {
	switch {
	case p.MaxEnergy <= 0:
		return fmt.Errorf("player %d: max energy %d must be positive", p.ID, p.MaxEnergy)
	case p.Energy < 0 || p.Energy > p.MaxEnergy:
		return fmt.Errorf("player %d: energy %d outside [0, %d]", p.ID, p.Energy, p.MaxEnergy)
	case p.Balance < 0:
		return fmt.Errorf("player %d: negative balance %d", p.ID, p.Balance)
	case p.CoinsPerClick <= 0:
		return fmt.Errorf("player %d: coins per click %d must be positive", p.ID, p.CoinsPerClick)
	case p.EnergyRegenRate < 0:
		return fmt.Errorf("player %d: negative regen rate %d", p.ID, p.EnergyRegenRate)
	}
	return nil
}

// Resources is the short snapshot returned by click and sync.
type Resources struct {
	Balance   int64 `json:"balance,string"`
	Energy    int64 `json:"energy"`
	MaxEnergy int64 `json:"maxEnergy"`
}

func (p *Player) Resources() Resources {
	return Resources{Balance: p.Balance, Energy: p.Energy, MaxEnergy: p.MaxEnergy}
}

// LeaderboardEntry is one row of the top players list.
type LeaderboardEntry struct {
	Rank          int    `db:"-" json:"rank"`
	PlayerID      int64  `db:"id" json:"id"`
	Username      string `db:"username" json:"username"`
	Balance       int64  `db:"balance" json:"balance,string"`
	Level         int    `db:"level" json:"level"`
	CoinsPerClick int64  `db:"coins_per_click" json:"coinsPerClick"`
}
