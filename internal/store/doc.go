// Package store persists sensors, readings, items, alerts, and users. Gorm
// is the MySQL-backed production store; Memory is a thread-safe in-memory
// equivalent for tests and DSN-less development runs.
package store
