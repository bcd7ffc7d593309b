// Package ingest accepts sensor readings from the HTTP API and the MQTT
// consumer: it persists the reading, refreshes the sensor's liveness ping,
// and raises threshold-breach alerts through the dispatcher.
package ingest
