package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"userId"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"createdAt"`
}

const (
	AuditCategoryAuth  = "auth"
	AuditCategoryGame  = "game"
	AuditCategoryAdmin = "admin"
)

const (
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionTelegramLogin = "telegram_login"
	AuditActionLogout        = "logout"
	AuditActionRefresh       = "refresh"

	AuditActionUpgradePurchase = "upgrade_purchase"
	AuditActionDailyClaim      = "daily_reward_claim"
	AuditActionTaskClaim       = "task_reward_claim"
	AuditActionSync            = "sync"
	AuditActionAdminGrant      = "admin_grant"
)
