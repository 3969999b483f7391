package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var joinScreenCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "doorman_joins_screened",
	Help: "Number of join events that matched the denylist, by outcome",
}, []string{"outcome"})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "doorman_decisions",
	Help: "Number of decision control activations, by control and outcome",
}, []string{"control", "outcome"})

var reconcileCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "doorman_reconciliations",
	Help: "Number of warning-record closures via the reconciler, by outcome",
}, []string{"outcome"})

var noticeEditCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "doorman_notice_edits",
	Help: "Number of warning notices edited to their terminal state",
})

var pingMessageCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "doorman_ping_messages",
	Help: "Number of ping messages counted, by category",
}, []string{"category"})
