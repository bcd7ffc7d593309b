// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsDispatched counts alerts that survived the dedupe gate and were
	// persisted, by category.
	AlertsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldwatch_alerts_dispatched_total",
		Help: "Alerts persisted and routed to channels, by category.",
	}, []string{"category"})

	// AlertsSuppressed counts candidates dropped by the dedupe gate.
	AlertsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coldwatch_alerts_suppressed_total",
		Help: "Alert candidates suppressed by the dedupe window.",
	})

	// NotifyFailures counts best-effort notification deliveries that failed,
	// by channel.
	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldwatch_notify_failures_total",
		Help: "Failed notification deliveries, by channel.",
	}, []string{"channel"})

	// RuleTicks counts scheduled rule evaluations, by rule name.
	RuleTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldwatch_rule_ticks_total",
		Help: "Scheduled rule evaluation ticks, by rule.",
	}, []string{"rule"})

	// RuleTickErrors counts ticks that returned an error, by rule name.
	RuleTickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldwatch_rule_tick_errors_total",
		Help: "Rule evaluation ticks that failed, by rule.",
	}, []string{"rule"})
)
