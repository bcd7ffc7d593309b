// Package status derives the presentational ok/warning/danger/offline state
// of a sensor from its newest reading and thresholds. Pure read path: no
// alerting side effects.
package status
