package game

import (
	"math"
	"testing"
	"time"

	"clicker_game/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTaskReward(t *testing.T) {
	p := newPlayer(100, 1000, 1)
	task := &domain.Task{ID: 1, RewardCoins: 250, RewardEnergy: 50}
	pt := &domain.PlayerTask{IsCompleted: true}

	require.NoError(t, ApplyTaskReward(p, task, pt, t0))
	assert.Equal(t, int64(250), p.Balance)
	assert.Equal(t, int64(150), p.Energy)
	require.NotNil(t, pt.CompletedAt)
	assert.True(t, pt.Claimed())

	err := ApplyTaskReward(p, task, pt, t0.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrRewardAlreadyClaimed)
	assert.Equal(t, int64(250), p.Balance)
}

func TestApplyTaskRewardClampsEnergy(t *testing.T) {
	p := newPlayer(990, 1000, 1)
	task := &domain.Task{ID: 1, RewardEnergy: 500}
	require.NoError(t, ApplyTaskReward(p, task, &domain.PlayerTask{IsCompleted: true}, t0))
	assert.Equal(t, p.MaxEnergy, p.Energy)
}

func TestApplyTaskRewardNotCompleted(t *testing.T) {
	p := newPlayer(100, 1000, 1)
	pt := &domain.PlayerTask{}
	err := ApplyTaskReward(p, &domain.Task{RewardCoins: 10}, pt, t0)
	assert.ErrorIs(t, err, domain.ErrTaskNotCompleted)
	assert.Equal(t, int64(0), p.Balance)
	assert.Nil(t, pt.CompletedAt)
}

func TestApplySync(t *testing.T) {
	p := newPlayer(100, 1000, 1)
	p.Balance = 40
	now := t0.Add(time.Minute)

	delta := ApplySync(p, 5000, 90, now)
	assert.Equal(t, int64(50), delta)
	assert.Equal(t, int64(1000), p.Energy)
	assert.Equal(t, int64(90), p.Balance)
	assert.Equal(t, now, p.LastEnergyUpdate)

	ApplySync(p, -3, -7, now)
	assert.Equal(t, int64(0), p.Energy)
	assert.Equal(t, int64(0), p.Balance)
}

func TestApplyTaskRewardBalanceOverflow(t *testing.T) {
	p := newPlayer(10, 1000, 1)
	p.Balance = math.MaxInt64
	pt := &domain.PlayerTask{IsCompleted: true}

	err := ApplyTaskReward(p, &domain.Task{RewardCoins: 1, RewardEnergy: 50}, pt, t0)
	assert.ErrorIs(t, err, domain.ErrBalanceOverflow)
	assert.Nil(t, pt.CompletedAt)
	assert.Equal(t, int64(10), p.Energy)
}
