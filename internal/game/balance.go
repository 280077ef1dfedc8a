package game

import (
	"math"

	"clicker_game/internal/domain"
)

// Credit adds amount to the balance. It fails without mutating p when the
// result would not fit in int64. Negative amounts are not checked here.
func Credit(p *domain.Player, amount int64) error {
	if amount > 0 && p.Balance > math.MaxInt64-amount {
		return domain.ErrBalanceOverflow
	}
	p.Balance += amount
	return nil
}

// clickIncome is clicks*perClick, or false when the product overflows.
func clickIncome(clicks, perClick int64) (int64, bool) {
	if clicks <= 0 || perClick <= 0 {
		return 0, true
	}
	if clicks > math.MaxInt64/perClick {
		return 0, false
	}
	return clicks * perClick, true
}
