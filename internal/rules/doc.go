// Package rules holds the four monitoring rule evaluators (sensor liveness,
// gateway power, door-ajar, and item expiry) as pure functions over a state
// snapshot and a reference time, plus the Jobs glue that binds them to the
// scheduler and the alert dispatcher.
package rules
