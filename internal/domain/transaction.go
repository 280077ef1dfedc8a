package domain

import "time"

// Ledger entry types. Every balance change writes one row.
const (
	TxTypeClick           = "click"
	TxTypeUpgradePurchase = "upgrade_purchase"
	TxTypeDailyReward     = "daily_reward"
	TxTypeTaskReward      = "task_reward"
	TxTypeSync            = "sync"
	TxTypeAdminGrant      = "admin_grant"
)

type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	PlayerID  int64                  `db:"player_id" json:"playerId"`
	Type      string                 `db:"type" json:"type"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"createdAt"`
}
