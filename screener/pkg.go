package screener

import (
	"github.com/doorman-bot/doorman/screener/countstore"
	"github.com/doorman-bot/doorman/screener/engine"
	"github.com/doorman-bot/doorman/screener/registry"
)

type Engine = engine.Engine
type JoinEvent = engine.JoinEvent
type DecisionEvent = engine.DecisionEvent
type RemovalEvent = engine.RemovalEvent
type MessageEvent = engine.MessageEvent

type WarningRecord = registry.WarningRecord
type CloseReason = registry.CloseReason

var (
	ControlAffirm  = engine.ControlAffirm
	ControlDismiss = engine.ControlDismiss

	ReasonAffirmed        = registry.ReasonAffirmed
	ReasonDismissed       = registry.ReasonDismissed
	ReasonExternalRemoval = registry.ReasonExternalRemoval
	ReasonExpired         = registry.ReasonExpired

	PeriodTotal = countstore.PeriodTotal
	PeriodMonth = countstore.PeriodMonth
	PeriodDay   = countstore.PeriodDay
)
