package domain

// AdminStats is the operator view of the economy. "Today" starts at midnight
// in the game time zone, "week" covers the last seven game days.
type AdminStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveToday         int64 `json:"activeToday"`
	ActiveWeek          int64 `json:"activeWeek"`
	TotalBalance        int64 `json:"totalBalance"`
	ClickCoinsToday     int64 `json:"clickCoinsToday"`
	UpgradesBoughtToday int64 `json:"upgradesBoughtToday"`
	DailyClaimsToday    int64 `json:"dailyClaimsToday"`
	TasksClaimedToday   int64 `json:"tasksClaimedToday"`
}

// PlayerInfo is what the admin bot shows for a single account.
type PlayerInfo struct {
	User   *User
	Player *Player
}
