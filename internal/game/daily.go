package game

import (
	"time"

	"clicker_game/internal/domain"
)

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// CheckDailyClaim fails when last was claimed on the same day as now.
func CheckDailyClaim(last *domain.PlayerDailyReward, now time.Time, loc *time.Location) error {
	if last != nil && SameDay(last.ClaimedAt, now, loc) {
		return domain.ErrAlreadyClaimedToday
	}
	return nil
}

// NextRewardDay is the catalog day to look up for the next claim. It follows
// the reward id of the previous claim, not the calendar.
func NextRewardDay(last *domain.PlayerDailyReward) int {
	if last == nil {
		return 1
	}
	return int(last.RewardID) + 1
}

// ApplyDailyReward credits the reward and builds the claim record.
// Only coin rewards change player state.
func ApplyDailyReward(p *domain.Player, reward *domain.DailyReward, last *domain.PlayerDailyReward, now time.Time) (*domain.PlayerDailyReward, error) {
	if reward.RewardType == domain.RewardTypeCoins {
		if err := Credit(p, reward.RewardAmount); err != nil {
			return nil, err
		}
	}
	return &domain.PlayerDailyReward{
		PlayerID:      p.ID,
		RewardID:      reward.ID,
		ClaimedAt:     now,
		IsConsecutive: last != nil,
		Reward:        reward,
	}, nil
}
