package game

import (
	"math"
	"testing"
	"time"

	"clicker_game/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyClicks(t *testing.T) {
	p := newPlayer(50, 1000, 1)
	p.CoinsPerClick = 3
	now := t0.Add(time.Minute)

	require.NoError(t, ApplyClicks(p, 20, now.Add(-2*time.Second), now, DefaultMaxClockSkew))
	assert.Equal(t, int64(30), p.Energy)
	assert.Equal(t, int64(60), p.Balance)
	assert.Equal(t, now, p.LastEnergyUpdate)
}

func TestApplyClicksExactEnergy(t *testing.T) {
	p := newPlayer(7, 1000, 1)
	require.NoError(t, ApplyClicks(p, 7, t0, t0, DefaultMaxClockSkew))
	assert.Equal(t, int64(0), p.Energy)
	assert.Equal(t, int64(7), p.Balance)

	err := ApplyClicks(p, 1, t0, t0, DefaultMaxClockSkew)
	assert.ErrorIs(t, err, domain.ErrInsufficientEnergy)
	assert.Equal(t, int64(7), p.Balance)
}

func TestApplyClicksRejects(t *testing.T) {
	tests := []struct {
		name      string
		energy    int64
		clicks    int64
		claimedAt time.Time
		wantErr   error
	}{
		{"not enough energy", 5, 6, t0, domain.ErrInsufficientEnergy},
		{"timestamp too old", 100, 1, t0.Add(-31 * time.Second), domain.ErrInvalidTimestamp},
		{"timestamp in future", 100, 1, t0.Add(31 * time.Second), domain.ErrInvalidTimestamp},
		{"energy checked first", 0, 1, t0.Add(-time.Hour), domain.ErrInsufficientEnergy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlayer(tt.energy, 1000, 1)
			before := *p
			err := ApplyClicks(p, tt.clicks, tt.claimedAt, t0, DefaultMaxClockSkew)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, *p)
		})
	}
}

func TestApplyClicksSkewBoundaryInclusive(t *testing.T) {
	p := newPlayer(10, 1000, 1)
	assert.NoError(t, ApplyClicks(p, 1, t0.Add(-30*time.Second), t0, DefaultMaxClockSkew))
}

func TestApplyClicksBalanceOverflow(t *testing.T) {
	p := newPlayer(100, 1000, 1)
	p.Balance = math.MaxInt64 - 5
	p.CoinsPerClick = 2
	err := ApplyClicks(p, 3, t0, t0, DefaultMaxClockSkew)
	assert.ErrorIs(t, err, domain.ErrBalanceOverflow)
	assert.Equal(t, int64(100), p.Energy)
	assert.Equal(t, int64(math.MaxInt64-5), p.Balance)

	// произведение clicks*perClick тоже не должно переполняться
	p.Balance = 0
	p.CoinsPerClick = math.MaxInt64 / 2
	assert.ErrorIs(t, ApplyClicks(p, 3, t0, t0, DefaultMaxClockSkew), domain.ErrBalanceOverflow)

	p.Balance = math.MaxInt64 - 6
	p.CoinsPerClick = 2
	require.NoError(t, ApplyClicks(p, 3, t0, t0, DefaultMaxClockSkew))
	assert.Equal(t, int64(math.MaxInt64), p.Balance)
}
