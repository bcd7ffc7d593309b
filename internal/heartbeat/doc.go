// Package heartbeat provides gateway last-heartbeat mappings for the
// power-failure check: a settable in-memory provider and a Kafka consumer
// that tracks last-seen times from a heartbeat topic.
package heartbeat
