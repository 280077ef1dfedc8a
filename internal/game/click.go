package game

import (
	"time"

	"clicker_game/internal/domain"
)

// DefaultMaxClockSkew bounds how far a client's click timestamp may drift
// from server time.
const DefaultMaxClockSkew = 30 * time.Second

// ApplyClicks spends one energy per click and credits CoinsPerClick per click.
// Checks run before any mutation, so p is untouched on error.
func ApplyClicks(p *domain.Player, clicks int64, claimedAt, now time.Time, maxSkew time.Duration) error {
	if p.Energy < clicks {
		return domain.ErrInsufficientEnergy
	}

	skew := now.Sub(claimedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return domain.ErrInvalidTimestamp
	}

	income, ok := clickIncome(clicks, p.CoinsPerClick)
	if !ok {
		return domain.ErrBalanceOverflow
	}
	if err := Credit(p, income); err != nil {
		return err
	}
	p.Energy -= clicks
	p.LastEnergyUpdate = now
	return nil
}
