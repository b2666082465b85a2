package recorder

// Evaluation is one coordinator run: what was fetched, how long it took,
// and whether it failed.
type Evaluation struct {
	Provider   string
	Symbol     string
	Period     string
	Interval   string
	Bars       int
	DurationMS int64
	Error      string
}

// Recorder persists evaluation history for later analysis.
type Recorder interface {
	RecordEvaluation(evt *Evaluation) error
	Close() error
}
