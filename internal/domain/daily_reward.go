package domain

import "time"

const (
	RewardTypeCoins  = "coins"
	RewardTypeEnergy = "energy"
	RewardTypeBoost  = "boost"
)

type DailyReward struct {
	ID           int64  `db:"id" json:"id"`
	Day          int    `db:"day" json:"day"`
	RewardType   string `db:"reward_type" json:"rewardType"`
	RewardAmount int64  `db:"reward_amount" json:"rewardAmount"`
	IsSpecial    bool   `db:"is_special" json:"isSpecial"`
}

// PlayerDailyReward is an append-only claim record.
type PlayerDailyReward struct {
	ID            int64        `db:"id" json:"id"`
	PlayerID      int64        `db:"player_id" json:"-"`
	RewardID      int64        `db:"reward_id" json:"-"`
	ClaimedAt     time.Time    `db:"claimed_at" json:"claimedAt"`
	IsConsecutive bool         `db:"is_consecutive" json:"isConsecutive"`
	Reward        *DailyReward `db:"-" json:"reward,omitempty"`
}

type DailyRewardsStatus struct {
	Rewards       []*DailyReward       `json:"rewards"`
	PlayerRewards []*PlayerDailyReward `json:"playerRewards"`
}
