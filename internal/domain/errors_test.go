package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", ErrInsufficientEnergy, KindInsufficientResource},
		{"wrapped", fmt.Errorf("click: %w", ErrPlayerNotFound), KindNotFound},
		{"already done", ErrAlreadyClaimedToday, KindAlreadyDone},
		{"plain error", errors.New("connection reset"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrappedSentinelStillMatches(t *testing.T) {
	err := fmt.Errorf("purchase upgrade 3: %w", ErrCostMismatch)
	assert.ErrorIs(t, err, ErrCostMismatch)
	assert.Equal(t, "Cost mismatch", ErrCostMismatch.Error())
}

func TestPlayerCheckInvariants(t *testing.T) {
	p := &Player{ID: 1, Energy: 10, MaxEnergy: 100, CoinsPerClick: 1, EnergyRegenRate: 1}
	assert.NoError(t, p.CheckInvariants())

	over := p.Clone()
	over.Energy = 101
	assert.Error(t, over.CheckInvariants())

	neg := p.Clone()
	neg.Balance = -1
	assert.Error(t, neg.CheckInvariants())

	assert.Equal(t, int64(10), p.Energy, "clone must not alias the original")
}
