package store

import "time"

// Session is one recorded sampling run.
type Session struct {
	ID               int64
	StartedAt        time.Time
	EndedAt          *time.Time // nil while in progress or after a crash
	IntervalSeconds  int
	PlannedSamples   int
	CompletedSamples int
	ThresholdBytes   uint64
	Note             string
}
