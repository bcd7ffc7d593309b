// Package sched runs registered monitoring checks on independent fixed
// intervals with graceful shutdown: cancellation stops the tickers and lets
// in-flight ticks finish.
package sched
