// Package model defines shared data structures.
package model

import "time"

// Config defines drill settings.
type Config struct {
	Layout     string
	Objects    int
	Interval   time.Duration
	Window     time.Duration
	Preempt    time.Duration
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	Seed       int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Layout      string
	Since       *time.Time
	Last        int
	CurveWindow int
	// Top keeps only the N most judged characters when > 0.
	Top int
}

// SessionStats captures a completed drill.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Layout     string
	Objects    int
	IntervalMs int64
	WindowMs   int64
	Hits       int
	Misses     int
	DurationMs int64
}

// CharStats stores per-character judgements for a session.
type CharStats struct {
	Char        string
	Hits        int
	Misses      int
	OffsetSumMs int64
	OffsetCount int64
}

// Aggregated per-char stats for selection or reporting.

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char        string
	Hits        int
	Misses      int
	OffsetSumMs int64
	OffsetCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Hits       int
	Misses     int
	DurationMs int64
}
