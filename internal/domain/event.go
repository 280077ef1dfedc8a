package domain

import "time"

// Gameplay event kinds published for external consumers (task progress
// tracking, analytics).
const (
	EventClick            = "click"
	EventUpgradePurchased = "upgrade_purchased"
	EventDailyClaimed     = "daily_reward_claimed"
	EventTaskClaimed      = "task_reward_claimed"
	EventPlayerSynced     = "player_synced"
	EventBalanceAdjusted  = "balance_adjusted"
)

type GameEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	PlayerID   int64                  `json:"playerId"`
	UserID     int64                  `json:"userId"`
	Balance    int64                  `json:"balance,string"`
	Level      int                    `json:"level"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}
