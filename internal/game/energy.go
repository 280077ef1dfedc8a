package game

import (
	"time"

	"clicker_game/internal/domain"
)

// Regenerate credits whole elapsed seconds of energy regeneration to p,
// capped at MaxEnergy. It reports whether p changed; the caller persists.
// Fractional seconds are not carried over once energy is credited.
func Regenerate(p *domain.Player, now time.Time) bool {
	if p.Energy >= p.MaxEnergy {
		return false
	}

	secs := int64(now.Sub(p.LastEnergyUpdate) / time.Second)
	if secs < 1 {
		return false
	}

	energy := p.Energy + secs*p.EnergyRegenRate
	if energy > p.MaxEnergy || energy < p.Energy {
		energy = p.MaxEnergy
	}
	if energy == p.Energy {
		return false
	}

	p.Energy = energy
	p.LastEnergyUpdate = now
	return true
}
