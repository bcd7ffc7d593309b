// Package model defines the persisted domain entities shared by the rule
// engine, the stores, and the HTTP API: sensors, readings, inventory items,
// alerts, and operator accounts.
package model
