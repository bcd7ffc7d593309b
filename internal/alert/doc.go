// Package alert implements the alert dispatch pipeline: the closed category
// routing table, time-windowed dedupe gating (in-memory or Redis), and the
// dispatcher that persists surviving candidates and fans out notifications.
package alert
