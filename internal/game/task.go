package game

import (
	"time"

	"clicker_game/internal/domain"
)

func CheckTaskClaim(pt *domain.PlayerTask) error {
	if !pt.IsCompleted {
		return domain.ErrTaskNotCompleted
	}
	if pt.Claimed() {
		return domain.ErrRewardAlreadyClaimed
	}
	return nil
}

// ApplyTaskReward pays out a completed task exactly once. Energy is clamped
// to MaxEnergy after the reward is added.
func ApplyTaskReward(p *domain.Player, t *domain.Task, pt *domain.PlayerTask, now time.Time) error {
	if err := CheckTaskClaim(pt); err != nil {
		return err
	}

	if err := Credit(p, t.RewardCoins); err != nil {
		return err
	}
	p.Energy += t.RewardEnergy
	if p.Energy > p.MaxEnergy {
		p.Energy = p.MaxEnergy
	}
	pt.CompletedAt = &now
	return nil
}
