// Package ws streams dispatched alerts to dashboard clients over WebSocket.
// Each alert is pushed as it is created; slow clients are dropped rather than
// allowed to back-pressure the dispatch path.
package ws
