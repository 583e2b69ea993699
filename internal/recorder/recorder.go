package recorder

import "MarketLens/internal/model"

// Recorder persists analysis results for later review. Price data is never
// stored; only run metadata and correlation outcomes.
type Recorder interface {
	RecordRun(report *model.Report) error
	Close() error
}
