package domain

import "time"

type TaskType string

const (
	TaskClicks    TaskType = "clicks"
	TaskUpgrades  TaskType = "upgrades"
	TaskReferrals TaskType = "referrals"
	TaskLevel     TaskType = "level"
	TaskBalance   TaskType = "balance"
)

type Task struct {
	ID           int64    `db:"id" json:"id"`
	Name         string   `db:"name" json:"name"`
	Description  string   `db:"description" json:"description"`
	TaskType     TaskType `db:"task_type" json:"taskType"`
	TargetValue  int64    `db:"target_value" json:"targetValue"`
	RewardCoins  int64    `db:"reward_coins" json:"rewardCoins"`
	RewardEnergy int64    `db:"reward_energy" json:"rewardEnergy"`
	IsActive     bool     `db:"is_active" json:"isActive"`
	SortOrder    int      `db:"sort_order" json:"order"`
}

// PlayerTask tracks progress on a task. CompletedAt is set when the reward
// is claimed and doubles as the claimed flag.
type PlayerTask struct {
	ID          int64      `db:"id" json:"id"`
	PlayerID    int64      `db:"player_id" json:"-"`
	TaskID      int64      `db:"task_id" json:"-"`
	Progress    int64      `db:"progress" json:"progress"`
	IsCompleted bool       `db:"is_completed" json:"isCompleted"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt"`
}

// Claimed reports whether the task reward was already paid out.
func (pt *PlayerTask) Claimed() bool {
	return pt.CompletedAt != nil
}

// TaskProgress is the listing shape: a task with the player's progress.
// ID is 0 when the player has never touched the task.
type TaskProgress struct {
	ID          int64      `json:"id"`
	Task        *Task      `json:"task"`
	Progress    int64      `json:"progress"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

func NewTaskProgress(t *Task, pt *PlayerTask) TaskProgress {
	if pt == nil {
		return TaskProgress{Task: t}
	}
	return TaskProgress{
		ID:          pt.ID,
		Task:        t,
		Progress:    pt.Progress,
		IsCompleted: pt.IsCompleted,
		CompletedAt: pt.CompletedAt,
	}
}
