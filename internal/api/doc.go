// Package api serves the REST surface: sensor status, alert listing and
// resolution, reading ingestion, manual check triggers, login, health, and
// Prometheus metrics. All state lives behind the Store and Ingestor
// interfaces.
package api
