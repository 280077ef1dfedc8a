package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_clicks_total",
		Help: "Total clicks accepted",
	})
	coinsEarnedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_coins_earned_total",
		Help: "Coins credited to players by source",
	}, []string{"source"})
	upgradePurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_upgrade_purchases_total",
		Help: "Upgrade levels purchased by upgrade type",
	}, []string{"type"})
	rewardClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_reward_claims_total",
		Help: "Daily and task reward claims",
	}, []string{"kind"})
	operationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_operation_errors_total",
		Help: "Failed game operations by operation and error kind",
	}, []string{"op", "kind"})
	authEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Authentication outcomes",
	}, []string{"action", "result"})
)
