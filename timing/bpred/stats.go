package bpred

// Stats holds statistics for the predictor.
type Stats struct {
	// Lookups is the number of conditional predictions made.
	Lookups uint64
	// UncondBranches is the number of unconditional branches recorded.
	UncondBranches uint64
	// BTBUpdates is the number of BTB hit notifications.
	BTBUpdates uint64
	// Commits is the number of conditional branches committed.
	Commits uint64
	// Correct is the number of committed conditional branches whose
	// prediction matched the outcome.
	Correct uint64
	// Mispredictions is the number of committed conditional branches whose
	// prediction did not match the outcome.
	Mispredictions uint64
	// HistoryCorrections is the number of squashed-path updates.
	HistoryCorrections uint64
	// Squashes is the number of tokens discarded by Squash.
	Squashes uint64
}

// Accuracy returns the committed prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Commits == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Commits) * 100
}

// MispredictionRate returns the committed misprediction rate as a
// percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Commits == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Commits) * 100
}
