package game

import (
	"time"

	"clicker_game/internal/domain"
)

// ApplySync overwrites energy and balance with client-reported values.
// Energy is clamped into [0, MaxEnergy] and balance floored at zero.
// Returns the balance delta for the ledger.
func ApplySync(p *domain.Player, energy, balance int64, now time.Time) int64 {
	if energy > p.MaxEnergy {
		energy = p.MaxEnergy
	}
	if energy < 0 {
		energy = 0
	}
	if balance < 0 {
		balance = 0
	}

	delta := balance - p.Balance
	p.Energy = energy
	p.Balance = balance
	p.LastEnergyUpdate = now
	return delta
}
